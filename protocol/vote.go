package protocol

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/trustcore/crypto/blindsig"
	"github.com/vocdoni/trustcore/ledger"
	"github.com/vocdoni/trustcore/log"
	"github.com/vocdoni/trustcore/types"
)

// CredentialPayload is the credential a voter presents with a vote. The
// big integers travel as minimal hex strings.
type CredentialPayload struct {
	ElectionID types.HexBytes `json:"electionId"`
	Nullifier  types.HexBytes `json:"nullifier"`
	Message    string         `json:"message"`
	Signature  string         `json:"signature"`
}

// ZKProofPayload is the opaque ballot validity proof. The trust core only
// checks its shape; verification happens in the tally pipeline.
type ZKProofPayload struct {
	Proof         string   `json:"proof"`
	PublicSignals []string `json:"publicSignals"`
}

// VoteRequest is a vote submission.
type VoteRequest struct {
	Credential    CredentialPayload `json:"credential"`
	EncryptedVote string            `json:"encryptedVote"`
	Commitment    string            `json:"commitment"`
	ZKProof       ZKProofPayload    `json:"zkProof"`
}

// VoteReceipt is the acknowledgement a voter gets back: a confirmation
// code plus the inclusion proof of the recorded entry.
type VoteReceipt struct {
	ConfirmationCode string         `json:"confirmationCode"`
	Position         int            `json:"position"`
	Root             types.HexBytes `json:"root"`
	Proof            *ledger.Proof  `json:"proof"`
}

type voteRequest struct {
	req    *VoteRequest
	result chan voteResult
}

type voteResult struct {
	receipt *VoteReceipt
	err     error
}

// SubmitVote validates a vote and hands it to the election's writer
// goroutine. The writer serializes the nullifier check, the ledger
// append and the persistence, so two votes with the same credential can
// never both land.
func (p *Protocol) SubmitVote(ctx context.Context, id types.HexBytes, req *VoteRequest) (*VoteReceipt, error) {
	es, err := p.electionState(id)
	if err != nil {
		return nil, err
	}
	if err := p.validateVote(es, req); err != nil {
		return nil, err
	}
	vr := &voteRequest{req: req, result: make(chan voteResult, 1)}
	select {
	case es.votes <- vr:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, fmt.Errorf("protocol is shutting down")
	}
	select {
	case res := <-vr.result:
		return res.receipt, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// validateVote performs the stateless checks: election open, credential
// bound to this election, payload shape and authority signature.
func (p *Protocol) validateVote(es *electionState, req *VoteRequest) error {
	if req == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidVote)
	}
	p.mu.RLock()
	status := es.election.Status
	p.mu.RUnlock()
	if status != types.ElectionStatusVoting {
		return fmt.Errorf("%w: status is %s", ErrElectionNotOpen, status)
	}
	if !bytes.Equal(req.Credential.ElectionID, es.election.ID) {
		return fmt.Errorf("%w: credential is for %s",
			ErrCredentialElectionMismatch, req.Credential.ElectionID.String())
	}
	if len(req.Credential.Nullifier) != types.NullifierSize {
		return fmt.Errorf("%w: nullifier must be %d bytes",
			ErrInvalidVote, types.NullifierSize)
	}
	if req.EncryptedVote == "" {
		return fmt.Errorf("%w: missing encrypted vote", ErrInvalidVote)
	}
	if req.Commitment == "" {
		return fmt.Errorf("%w: missing commitment", ErrInvalidVote)
	}
	if req.ZKProof.Proof == "" {
		return fmt.Errorf("%w: missing proof", ErrInvalidVote)
	}
	if len(req.ZKProof.PublicSignals) != types.ProofPublicSignals {
		return fmt.Errorf("%w: expected %d public signals, got %d",
			ErrInvalidVote, types.ProofPublicSignals, len(req.ZKProof.PublicSignals))
	}

	message, err := blindsig.DecodeBigInt(req.Credential.Message)
	if err != nil {
		return fmt.Errorf("%w: bad message encoding", ErrInvalidVote)
	}
	signature, err := blindsig.DecodeBigInt(req.Credential.Signature)
	if err != nil {
		return fmt.Errorf("%w: bad signature encoding", ErrInvalidVote)
	}
	// the message must be the canonical digest of this credential
	expected := blindsig.CredentialMessage(es.election.ID, req.Credential.Nullifier, &es.keys.Public)
	if expected.Cmp(message) != 0 {
		return fmt.Errorf("%w: message does not bind the credential", ErrInvalidCredentialSignature)
	}
	if !blindsig.VerifySignature(message, signature, &es.keys.Public) {
		return ErrInvalidCredentialSignature
	}
	return nil
}

// voteWriter is the single goroutine allowed to mutate the ledger of one
// election.
func (p *Protocol) voteWriter(es *electionState) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case vr := <-es.votes:
			receipt, err := p.processVote(es, vr.req)
			vr.result <- voteResult{receipt: receipt, err: err}
		}
	}
}

// processVote runs the serialized section: nullifier check, persistence,
// ledger append. Only the writer goroutine calls it.
func (p *Protocol) processVote(es *electionState, req *VoteRequest) (*VoteReceipt, error) {
	if es.ledger.HasNullifier(req.Credential.Nullifier) {
		return nil, fmt.Errorf("%w: %s",
			ErrCredentialAlreadyUsed, req.Credential.Nullifier.String())
	}
	entry := &ledger.Entry{
		ID:            uuid.New().String(),
		EncryptedVote: req.EncryptedVote,
		Commitment:    req.Commitment,
		ZKProof:       append([]string{req.ZKProof.Proof}, req.ZKProof.PublicSignals...),
		Nullifier:     req.Credential.Nullifier,
		Timestamp:     time.Now().UTC(),
	}
	// Persist before touching the ledger: a storage failure must leave
	// the nullifier unspent so the same credential can retry.
	position := es.ledger.Count()
	if err := p.persistVote(es.election.ID, position, entry); err != nil {
		return nil, fmt.Errorf("persist vote: %w", err)
	}
	appended, proof, err := es.ledger.Append(entry)
	if err != nil {
		if derr := p.stg.DeleteVote(es.election.ID, position); derr != nil {
			log.Errorw(derr, "could not roll back persisted vote")
		}
		return nil, err
	}
	position = appended
	log.Debugw("vote recorded",
		"electionId", es.election.ID.String(),
		"position", position,
		"voteId", entry.ID,
	)
	return &VoteReceipt{
		ConfirmationCode: uuid.New().String(),
		Position:         position,
		Root:             proof.Root,
		Proof:            proof,
	}, nil
}
