package protocol

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/trustcore/ceremony"
	"github.com/vocdoni/trustcore/crypto/blindsig"
	"github.com/vocdoni/trustcore/ledger"
	"github.com/vocdoni/trustcore/log"
	"github.com/vocdoni/trustcore/storage"
	"github.com/vocdoni/trustcore/types"
	"github.com/vocdoni/trustcore/util"
	"go.vocdoni.io/dvote/db/metadb"
)

func TestMain(m *testing.M) {
	log.Init(log.LogLevelDebug, "stderr", nil)
	os.Exit(m.Run())
}

func testProtocol(t *testing.T) (*Protocol, *storage.Storage) {
	stg := storage.New(metadb.NewTest(t))
	p, err := New(stg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(p.Close)
	return p, stg
}

func createTestElection(t *testing.T, p *Protocol, nonce uint64) *types.Election {
	election, err := p.CreateElection(&ElectionParams{
		OrganizationID: common.BytesToAddress(util.RandomBytes(20)),
		Nonce:          nonce,
		ChainID:        420,
		Threshold:      2,
		MaxTrustees:    3,
		StartTime:      time.Now().UTC(),
		Duration:       time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	return election
}

// issueCredential runs the voter side of the blind issuance: create a
// credential, blind it, have the authority sign it, unblind.
func issueCredential(t *testing.T, p *Protocol, election *types.Election) CredentialPayload {
	pub, err := p.AuthorityPublicKey(election.ID)
	if err != nil {
		t.Fatal(err)
	}
	authority, err := blindsig.DecodePublicKey(*pub)
	if err != nil {
		t.Fatal(err)
	}
	cred, err := blindsig.NewCredential(election.ID, authority)
	if err != nil {
		t.Fatal(err)
	}
	blinded, err := blindsig.BlindMessage(cred.Message.MathBigInt(), authority)
	if err != nil {
		t.Fatal(err)
	}
	issued, err := p.IssueCredential(election.ID, blindsig.EncodeBigInt(blinded.Blinded))
	if err != nil {
		t.Fatal(err)
	}
	signedBlinded, err := blindsig.DecodeBigInt(issued.BlindedSignature)
	if err != nil {
		t.Fatal(err)
	}
	signature, err := blindsig.UnblindSignature(signedBlinded, blinded.R, authority)
	if err != nil {
		t.Fatal(err)
	}
	return CredentialPayload{
		ElectionID: election.ID,
		Nullifier:  cred.Nullifier,
		Message:    blindsig.EncodeBigInt(cred.Message.MathBigInt()),
		Signature:  blindsig.EncodeBigInt(signature),
	}
}

func testVote(cred CredentialPayload) *VoteRequest {
	return &VoteRequest{
		Credential:    cred,
		EncryptedVote: util.RandomHex(64),
		Commitment:    util.RandomHex(32),
		ZKProof: ZKProofPayload{
			Proof:         util.RandomHex(128),
			PublicSignals: []string{util.RandomHex(32), util.RandomHex(32), util.RandomHex(32), util.RandomHex(32)},
		},
	}
}

func TestVoteLifecycle(t *testing.T) {
	c := qt.New(t)
	p, _ := testProtocol(t)
	election := createTestElection(t, p, 1)
	c.Assert(election.Status, qt.Equals, types.ElectionStatusRegistration)

	cred := issueCredential(t, p, election)

	// votes are rejected until the election opens
	_, err := p.SubmitVote(context.Background(), election.ID, testVote(cred))
	c.Assert(err, qt.ErrorIs, ErrElectionNotOpen)

	c.Assert(p.SetElectionStatus(election.ID, types.ElectionStatusVoting), qt.IsNil)

	receipt, err := p.SubmitVote(context.Background(), election.ID, testVote(cred))
	c.Assert(err, qt.IsNil)
	c.Assert(receipt.ConfirmationCode, qt.Not(qt.Equals), "")
	c.Assert(receipt.Position, qt.Equals, 0)
	c.Assert(ledger.VerifyProof(receipt.Proof), qt.IsTrue)

	root, err := p.Root(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(root.String(), qt.Equals, receipt.Root.String())

	// the same credential cannot vote twice
	_, err = p.SubmitVote(context.Background(), election.ID, testVote(cred))
	c.Assert(err, qt.ErrorIs, ErrCredentialAlreadyUsed)

	// a second voter lands at position 1
	receipt2, err := p.SubmitVote(context.Background(), election.ID, testVote(issueCredentialInVoting(t, p, election)))
	c.Assert(err, qt.IsNil)
	c.Assert(receipt2.Position, qt.Equals, 1)
}

// issueCredentialInVoting issues a credential by temporarily relying on
// credentials obtained before the election opened. Issuance itself is
// closed once voting starts, so the credential must be prepared against
// the stored keys directly.
func issueCredentialInVoting(t *testing.T, p *Protocol, election *types.Election) CredentialPayload {
	es, err := p.electionState(election.ID)
	if err != nil {
		t.Fatal(err)
	}
	cred, err := blindsig.NewCredential(election.ID, &es.keys.Public)
	if err != nil {
		t.Fatal(err)
	}
	blinded, err := blindsig.BlindMessage(cred.Message.MathBigInt(), &es.keys.Public)
	if err != nil {
		t.Fatal(err)
	}
	signedBlinded, err := blindsig.SignBlinded(blinded.Blinded, &es.keys.Private)
	if err != nil {
		t.Fatal(err)
	}
	signature, err := blindsig.UnblindSignature(signedBlinded, blinded.R, &es.keys.Public)
	if err != nil {
		t.Fatal(err)
	}
	return CredentialPayload{
		ElectionID: election.ID,
		Nullifier:  cred.Nullifier,
		Message:    blindsig.EncodeBigInt(cred.Message.MathBigInt()),
		Signature:  blindsig.EncodeBigInt(signature),
	}
}

func TestConcurrentDuplicateCredential(t *testing.T) {
	c := qt.New(t)
	p, _ := testProtocol(t)
	election := createTestElection(t, p, 2)
	cred := issueCredential(t, p, election)
	c.Assert(p.SetElectionStatus(election.ID, types.ElectionStatusVoting), qt.IsNil)

	const voters = 16
	var wg sync.WaitGroup
	errs := make([]error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.SubmitVote(context.Background(), election.ID, testVote(cred))
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrCredentialAlreadyUsed):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	c.Assert(ok, qt.Equals, 1)
	c.Assert(dup, qt.Equals, voters-1)

	root, err := p.Root(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(root, qt.HasLen, 32)
}

func TestVoteValidation(t *testing.T) {
	c := qt.New(t)
	p, _ := testProtocol(t)
	election := createTestElection(t, p, 3)
	other := createTestElection(t, p, 4)
	cred := issueCredential(t, p, election)
	otherCred := issueCredential(t, p, other)
	c.Assert(p.SetElectionStatus(election.ID, types.ElectionStatusVoting), qt.IsNil)

	// a credential from another election is rejected
	_, err := p.SubmitVote(context.Background(), election.ID, testVote(otherCred))
	c.Assert(err, qt.ErrorIs, ErrCredentialElectionMismatch)

	// a forged signature is rejected
	forged := cred
	forged.Signature = blindsig.EncodeBigInt(new(big.Int).SetBytes(util.RandomBytes(32)))
	_, err = p.SubmitVote(context.Background(), election.ID, testVote(forged))
	c.Assert(err, qt.ErrorIs, ErrInvalidCredentialSignature)

	// a message that does not bind the nullifier is rejected
	rebound := cred
	rebound.Message = blindsig.EncodeBigInt(new(big.Int).SetBytes(util.RandomBytes(32)))
	_, err = p.SubmitVote(context.Background(), election.ID, testVote(rebound))
	c.Assert(err, qt.ErrorIs, ErrInvalidCredentialSignature)

	// structural defects
	v := testVote(cred)
	v.EncryptedVote = ""
	_, err = p.SubmitVote(context.Background(), election.ID, v)
	c.Assert(err, qt.ErrorIs, ErrInvalidVote)

	v = testVote(cred)
	v.Commitment = ""
	_, err = p.SubmitVote(context.Background(), election.ID, v)
	c.Assert(err, qt.ErrorIs, ErrInvalidVote)

	v = testVote(cred)
	v.ZKProof.PublicSignals = v.ZKProof.PublicSignals[:2]
	_, err = p.SubmitVote(context.Background(), election.ID, v)
	c.Assert(err, qt.ErrorIs, ErrInvalidVote)

	v = testVote(cred)
	v.Credential.Nullifier = util.RandomBytes(16)
	_, err = p.SubmitVote(context.Background(), election.ID, v)
	c.Assert(err, qt.ErrorIs, ErrInvalidVote)

	// the unmodified credential still works after all the rejections
	_, err = p.SubmitVote(context.Background(), election.ID, testVote(cred))
	c.Assert(err, qt.IsNil)

	_, err = p.SubmitVote(context.Background(), types.HexBytes(util.RandomBytes(32)), testVote(cred))
	c.Assert(err, qt.ErrorIs, ErrElectionNotFound)
}

func TestStatusTransitions(t *testing.T) {
	c := qt.New(t)
	p, _ := testProtocol(t)
	election := createTestElection(t, p, 5)

	c.Assert(p.SetElectionStatus(election.ID, types.ElectionStatusVoting), qt.IsNil)
	err := p.SetElectionStatus(election.ID, types.ElectionStatusRegistration)
	c.Assert(err, qt.ErrorIs, ErrInvalidStatusTransition)
	err = p.SetElectionStatus(election.ID, types.ElectionStatusVoting)
	c.Assert(err, qt.ErrorIs, ErrInvalidStatusTransition)

	// issuance is closed outside registration
	_, err = p.IssueCredential(election.ID, blindsig.EncodeBigInt(new(big.Int).SetBytes(util.RandomBytes(32))))
	c.Assert(err, qt.ErrorIs, ErrIssuanceClosed)

	c.Assert(p.SetElectionStatus(election.ID, types.ElectionStatusComplete), qt.IsNil)
}

func TestCeremonyThroughProtocol(t *testing.T) {
	c := qt.New(t)
	p, _ := testProtocol(t)
	election := createTestElection(t, p, 6)

	var trustees []*ceremony.Trustee
	for i := 0; i < 3; i++ {
		tr, err := p.RegisterTrustee(election.ID, fmt.Sprintf("trustee-%d", i), util.RandomBytes(33))
		c.Assert(err, qt.IsNil)
		trustees = append(trustees, tr)
	}
	status, err := p.CeremonyStatus(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(status.Phase, qt.Equals, "COMMITMENT")

	for i := 0; i < 2; i++ {
		poly, err := ceremony.NewPolynomial(1, "bn254")
		c.Assert(err, qt.IsNil)
		status, err = p.SubmitCommitment(election.ID, trustees[i].ID, util.RandomBytes(32), poly.Commitments())
		c.Assert(err, qt.IsNil)
	}
	c.Assert(status.Phase, qt.Equals, "FINALIZED")
	c.Assert(len(status.JointKey) > 0, qt.IsTrue)

	got, err := p.Election(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.JointKey.String(), qt.Equals, status.JointKey.String())

	list, err := p.Trustees(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 3)
}

func TestRestartRecovery(t *testing.T) {
	c := qt.New(t)
	stg := storage.New(metadb.NewTest(t))

	p, err := New(stg)
	c.Assert(err, qt.IsNil)
	election := createTestElection(t, p, 7)
	cred := issueCredential(t, p, election)
	c.Assert(p.SetElectionStatus(election.ID, types.ElectionStatusVoting), qt.IsNil)
	receipt, err := p.SubmitVote(context.Background(), election.ID, testVote(cred))
	c.Assert(err, qt.IsNil)
	_, err = p.Snapshot(election.ID)
	c.Assert(err, qt.IsNil)
	p.Close()

	// a fresh protocol over the same storage sees the same world
	p2, err := New(stg)
	c.Assert(err, qt.IsNil)
	t.Cleanup(p2.Close)

	root, err := p2.Root(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(root.String(), qt.Equals, receipt.Root.String())

	got, err := p2.Election(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Status, qt.Equals, types.ElectionStatusVoting)

	// the spent nullifier survives the restart
	_, err = p2.SubmitVote(context.Background(), election.ID, testVote(cred))
	c.Assert(err, qt.ErrorIs, ErrCredentialAlreadyUsed)

	snaps, err := stg.Snapshots(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(snaps, qt.HasLen, 1)
	c.Assert(snaps[0].Root.String(), qt.Equals, receipt.Root.String())
}

func TestVoteRetryAfterStorageFailure(t *testing.T) {
	c := qt.New(t)
	p, stg := testProtocol(t)
	election := createTestElection(t, p, 9)
	cred := issueCredential(t, p, election)
	c.Assert(p.SetElectionStatus(election.ID, types.ElectionStatusVoting), qt.IsNil)

	persist := p.persistVote
	failures := 1
	p.persistVote = func(id types.HexBytes, position int, entry *ledger.Entry) error {
		if failures > 0 {
			failures--
			return fmt.Errorf("storage unavailable")
		}
		return persist(id, position, entry)
	}

	req := testVote(cred)
	_, err := p.SubmitVote(context.Background(), election.ID, req)
	c.Assert(err, qt.IsNotNil)
	// the failed submission must not spend the credential
	c.Assert(errors.Is(err, ErrCredentialAlreadyUsed), qt.IsFalse)
	count, err := p.VoteCount(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, 0)
	entries, err := stg.Votes(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 0)

	// an identical retry lands
	receipt, err := p.SubmitVote(context.Background(), election.ID, req)
	c.Assert(err, qt.IsNil)
	c.Assert(receipt.Position, qt.Equals, 0)
	c.Assert(ledger.VerifyProof(receipt.Proof), qt.IsTrue)
	entries, err = stg.Votes(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 1)

	// only now is the nullifier burned
	_, err = p.SubmitVote(context.Background(), election.ID, testVote(cred))
	c.Assert(err, qt.ErrorIs, ErrCredentialAlreadyUsed)
}

func TestConcurrentElectionReadsDuringFinalization(t *testing.T) {
	c := qt.New(t)
	p, _ := testProtocol(t)
	election := createTestElection(t, p, 10)

	var trustees []*ceremony.Trustee
	for i := 0; i < 3; i++ {
		tr, err := p.RegisterTrustee(election.ID, fmt.Sprintf("trustee-%d", i), util.RandomBytes(33))
		c.Assert(err, qt.IsNil)
		trustees = append(trustees, tr)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			if _, err := p.Election(election.ID); err != nil {
				return
			}
		}
	}()

	for i := 0; i < 2; i++ {
		poly, err := ceremony.NewPolynomial(1, "bn254")
		c.Assert(err, qt.IsNil)
		_, err = p.SubmitCommitment(election.ID, trustees[i].ID, util.RandomBytes(32), poly.Commitments())
		c.Assert(err, qt.IsNil)
	}
	close(done)
	wg.Wait()

	got, err := p.Election(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(len(got.JointKey) > 0, qt.IsTrue)
}
