// Package protocol glues the credential authority, the key ceremony and
// the vote ledger into the election lifecycle. It owns one runtime state
// per election and serializes every ledger mutation of an election
// through a single writer goroutine.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/trustcore/ceremony"
	"github.com/vocdoni/trustcore/crypto/blindsig"
	"github.com/vocdoni/trustcore/crypto/ecc/curves"
	"github.com/vocdoni/trustcore/ledger"
	"github.com/vocdoni/trustcore/log"
	"github.com/vocdoni/trustcore/storage"
	"github.com/vocdoni/trustcore/types"
)

var (
	// ErrElectionNotFound is returned when an election ID is unknown.
	ErrElectionNotFound = errors.New("election not found")
	// ErrElectionNotOpen is returned when a vote arrives outside the
	// voting window.
	ErrElectionNotOpen = errors.New("election is not open for voting")
	// ErrIssuanceClosed is returned when a credential is requested
	// outside the registration window.
	ErrIssuanceClosed = errors.New("credential issuance is closed")
	// ErrCredentialElectionMismatch is returned when a credential was
	// issued for a different election.
	ErrCredentialElectionMismatch = errors.New("credential election mismatch")
	// ErrInvalidCredentialSignature is returned when the authority
	// signature on a credential does not verify.
	ErrInvalidCredentialSignature = errors.New("invalid credential signature")
	// ErrCredentialAlreadyUsed is returned when the credential nullifier
	// is already in the ledger.
	ErrCredentialAlreadyUsed = errors.New("credential already used")
	// ErrInvalidVote is returned when a vote request is structurally
	// malformed.
	ErrInvalidVote = errors.New("invalid vote request")
	// ErrInvalidStatusTransition is returned when an election status
	// would move backwards.
	ErrInvalidStatusTransition = errors.New("invalid election status transition")
)

// ElectionParams configures a new election.
type ElectionParams struct {
	OrganizationID common.Address
	Nonce          uint64
	ChainID        uint32
	Threshold      int
	MaxTrustees    int
	CurveType      string
	StartTime      time.Time
	Duration       time.Duration
	// KeyBits is the authority RSA modulus size, minimum 2048.
	KeyBits int
}

// electionState is the runtime of one election: its ledger, ceremony and
// signing keys, plus the single writer channel all votes go through.
type electionState struct {
	election *types.Election
	keys     *blindsig.AuthorityKeys
	ceremony *ceremony.Ceremony
	ledger   *ledger.Ledger
	votes    chan *voteRequest
}

// Protocol is the election trust coordinator. All persisted state lives
// in storage; the in-memory states are rebuilt from it on startup.
type Protocol struct {
	stg *storage.Storage

	// persistVote writes one ledger entry to storage. It points at
	// stg.AppendVote; tests swap it to simulate storage failures.
	persistVote func(electionID types.HexBytes, position int, entry *ledger.Entry) error

	mu        sync.RWMutex
	elections map[string]*electionState

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Protocol over a storage instance and loads every
// persisted election into memory.
func New(stg *storage.Storage) (*Protocol, error) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Protocol{
		stg:         stg,
		persistVote: stg.AppendVote,
		elections:   make(map[string]*electionState),
		ctx:         ctx,
		cancel:      cancel,
	}
	if err := p.loadElections(); err != nil {
		cancel()
		return nil, err
	}
	return p, nil
}

// Close stops the vote writers. It does not close the storage.
func (p *Protocol) Close() {
	p.cancel()
	p.wg.Wait()
}

// loadElections rebuilds the runtime state of every stored election.
func (p *Protocol) loadElections() error {
	ids, err := p.stg.ListElections()
	if err != nil {
		return fmt.Errorf("list elections: %w", err)
	}
	for _, id := range ids {
		if err := p.loadElection(id); err != nil {
			return fmt.Errorf("load election %x: %w", id, err)
		}
	}
	return nil
}

func (p *Protocol) loadElection(id types.HexBytes) error {
	election, err := p.stg.Election(id)
	if err != nil {
		return err
	}
	keys, err := p.stg.AuthorityKeys(id)
	if err != nil {
		return err
	}
	state, err := p.stg.CeremonyState(id)
	if err != nil {
		return err
	}
	cer, err := ceremony.Restore(state)
	if err != nil {
		return fmt.Errorf("restore ceremony: %w", err)
	}
	entries, err := p.stg.Votes(id)
	if err != nil {
		return err
	}
	ldg, err := ledger.Import(entries)
	if err != nil {
		return fmt.Errorf("rebuild ledger: %w", err)
	}
	p.startElection(&electionState{
		election: election,
		keys:     keys,
		ceremony: cer,
		ledger:   ldg,
	})
	log.Infow("election loaded",
		"electionId", election.ID.String(),
		"status", election.Status.String(),
		"votes", ldg.Count(),
	)
	return nil
}

// CreateElection generates the authority keys, creates the key ceremony
// and persists everything. The election starts in registration status so
// credential issuance opens immediately.
func (p *Protocol) CreateElection(params *ElectionParams) (*types.Election, error) {
	if params == nil {
		return nil, fmt.Errorf("nil election params")
	}
	if params.KeyBits == 0 {
		params.KeyBits = types.MinModulusBits
	}
	if params.CurveType == "" {
		params.CurveType = curves.CurveTypeBN254
	}
	keys, err := blindsig.GenerateKeys(params.KeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate authority keys: %w", err)
	}
	eid := types.ElectionID{
		Address: params.OrganizationID,
		Nonce:   params.Nonce,
		ChainID: params.ChainID,
	}
	id := types.HexBytes(eid.Marshal())

	cer, err := ceremony.New(id, params.Threshold, params.MaxTrustees, params.CurveType)
	if err != nil {
		return nil, err
	}
	election := &types.Election{
		ID:             id,
		Status:         types.ElectionStatusRegistration,
		OrganizationID: params.OrganizationID,
		PublicKey:      blindsig.EncodePublicKey(&keys.Public),
		Threshold:      params.Threshold,
		MaxTrustees:    params.MaxTrustees,
		StartTime:      params.StartTime,
		Duration:       params.Duration,
	}
	if err := p.stg.SetElection(election); err != nil {
		return nil, err
	}
	if err := p.stg.SetAuthorityKeys(id, keys); err != nil {
		return nil, err
	}
	if err := p.stg.SetCeremonyState(id, cer.State()); err != nil {
		return nil, err
	}
	p.startElection(&electionState{
		election: election,
		keys:     keys,
		ceremony: cer,
		ledger:   ledger.New(),
	})
	log.Infow("election created",
		"electionId", election.ID.String(),
		"threshold", params.Threshold,
		"maxTrustees", params.MaxTrustees,
	)
	return election, nil
}

// startElection registers the state and spawns its vote writer.
func (p *Protocol) startElection(es *electionState) {
	es.votes = make(chan *voteRequest)
	p.mu.Lock()
	p.elections[es.election.ID.String()] = es
	p.mu.Unlock()
	p.wg.Add(1)
	go p.voteWriter(es)
}

func (p *Protocol) electionState(id types.HexBytes) (*electionState, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	es, ok := p.elections[id.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrElectionNotFound, id.String())
	}
	return es, nil
}

// Election returns the stored election record.
func (p *Protocol) Election(id types.HexBytes) (*types.Election, error) {
	es, err := p.electionState(id)
	if err != nil {
		return nil, err
	}
	// status and joint key are written under the lock, hand out a copy
	p.mu.RLock()
	election := *es.election
	p.mu.RUnlock()
	return &election, nil
}

// ListElections returns the IDs of all known elections.
func (p *Protocol) ListElections() ([][]byte, error) {
	return p.stg.ListElections()
}

// SetElectionStatus advances the election lifecycle. The status only
// moves forward; any backwards transition is rejected.
func (p *Protocol) SetElectionStatus(id types.HexBytes, status types.ElectionStatus) error {
	es, err := p.electionState(id)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if status <= es.election.Status {
		return fmt.Errorf("%w: %s to %s",
			ErrInvalidStatusTransition, es.election.Status, status)
	}
	es.election.Status = status
	if err := p.stg.SetElection(es.election); err != nil {
		return err
	}
	log.Infow("election status changed",
		"electionId", id.String(),
		"status", status.String(),
	)
	return nil
}

// Root returns the current ledger root of an election.
func (p *Protocol) Root(id types.HexBytes) (types.HexBytes, error) {
	es, err := p.electionState(id)
	if err != nil {
		return nil, err
	}
	return es.ledger.Root(), nil
}

// VoteCount returns the number of recorded votes of an election.
func (p *Protocol) VoteCount(id types.HexBytes) (int, error) {
	es, err := p.electionState(id)
	if err != nil {
		return 0, err
	}
	return es.ledger.Count(), nil
}

// LedgerProof generates an inclusion proof for a recorded vote.
func (p *Protocol) LedgerProof(id types.HexBytes, position int) (*ledger.Proof, error) {
	es, err := p.electionState(id)
	if err != nil {
		return nil, err
	}
	return es.ledger.Proof(position)
}

// Snapshot captures and persists a ledger snapshot for anchoring.
func (p *Protocol) Snapshot(id types.HexBytes) (*ledger.Snapshot, error) {
	es, err := p.electionState(id)
	if err != nil {
		return nil, err
	}
	snap := es.ledger.Snapshot()
	if err := p.stg.SetSnapshot(id, snap); err != nil {
		return nil, err
	}
	return snap, nil
}
