// Package ceremony implements the threshold key ceremony coordinator. It
// drives a committee of trustees through Feldman verifiable secret sharing
// until a joint election public key emerges, while the matching private key
// never exists in a single place.
package ceremony

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/vocdoni/trustcore/crypto/ecc"
	"github.com/vocdoni/trustcore/crypto/ecc/curves"
	"github.com/vocdoni/trustcore/log"
	"github.com/vocdoni/trustcore/types"
)

var (
	// ErrDuplicateRegistration is returned when a trustee registers twice.
	ErrDuplicateRegistration = errors.New("trustee already registered")
	// ErrCeremonyClosed is returned when registration is attempted after
	// the registration phase has ended.
	ErrCeremonyClosed = errors.New("ceremony registration closed")
	// ErrInvalidCommitmentShape is returned when a commitment vector does
	// not match the expected polynomial degree.
	ErrInvalidCommitmentShape = errors.New("invalid commitment shape")
	// ErrCeremonyAlreadyFinalized is returned when a commitment arrives
	// after the joint key has been fixed.
	ErrCeremonyAlreadyFinalized = errors.New("ceremony already finalized")
	// ErrUnknownTrustee is returned when a commitment arrives from a
	// trustee that never registered.
	ErrUnknownTrustee = errors.New("trustee not registered")
	// ErrNotInCommitmentPhase is returned when a commitment arrives before
	// the registration phase has completed.
	ErrNotInCommitmentPhase = errors.New("ceremony not in commitment phase")
)

// Phase is the ceremony lifecycle phase. Phases only move forward.
type Phase uint8

const (
	PhaseCreated Phase = iota
	PhaseRegistration
	PhaseCommitment
	PhaseShareDistribution
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "CREATED"
	case PhaseRegistration:
		return "REGISTRATION"
	case PhaseCommitment:
		return "COMMITMENT"
	case PhaseShareDistribution:
		return "SHARE_DISTRIBUTION"
	case PhaseFinalized:
		return "FINALIZED"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(p))
	}
}

// TrusteeStatus tracks how far a trustee has advanced in the ceremony.
type TrusteeStatus string

const (
	TrusteeStatusRegistered    TrusteeStatus = "registered"
	TrusteeStatusCommitted     TrusteeStatus = "committed"
	TrusteeStatusShareReceived TrusteeStatus = "share_received"
)

// Trustee is a member of the ceremony committee. The public key is the
// trustee's own communication key, not a share of the joint key.
type Trustee struct {
	ID         string         `json:"id"         cbor:"0,keyasint"`
	ElectionID types.HexBytes `json:"electionId" cbor:"1,keyasint"`
	Name       string         `json:"name"       cbor:"2,keyasint"`
	PublicKey  types.HexBytes `json:"publicKey"  cbor:"3,keyasint"`
	ShareIndex int            `json:"shareIndex" cbor:"4,keyasint"`
	Status     TrusteeStatus  `json:"status"     cbor:"5,keyasint"`
}

// Commitment is one published Feldman commitment point, binding a trustee
// polynomial coefficient. Commitments are public by construction.
type Commitment struct {
	X *types.BigInt `json:"x" cbor:"0,keyasint"`
	Y *types.BigInt `json:"y" cbor:"1,keyasint"`
}

// trusteeCommitment is the recorded commitment submission of one trustee.
type trusteeCommitment struct {
	Hash        types.HexBytes `cbor:"0,keyasint"`
	Commitments []Commitment   `cbor:"1,keyasint"`
}

// Status is a point-in-time summary of a ceremony.
type Status struct {
	Phase           string         `json:"phase"`
	RegisteredCount int            `json:"registeredCount"`
	RequiredCount   int            `json:"requiredCount"`
	CommittedCount  int            `json:"committedCount"`
	JointKey        types.HexBytes `json:"jointKey,omitempty"`
}

// Ceremony coordinates the trustees of one election. All mutations go
// through its lock, which is what makes the phase transitions atomic.
type Ceremony struct {
	mu sync.Mutex

	electionID  types.HexBytes
	threshold   int
	maxTrustees int
	curveType   string

	phase       Phase
	trustees    []*Trustee
	commitments map[string]*trusteeCommitment // keyed by trustee ID
	jointKey    ecc.Point
}

// New creates a ceremony for an election with a T-of-N committee. The
// threshold is fixed at creation and never changes; maxTrustees bounds
// over-registration and defaults to the threshold when zero.
func New(electionID []byte, threshold, maxTrustees int, curveType string) (*Ceremony, error) {
	if threshold < 2 {
		return nil, fmt.Errorf("threshold must be at least 2, got %d", threshold)
	}
	if maxTrustees == 0 {
		maxTrustees = threshold
	}
	if maxTrustees < threshold {
		return nil, fmt.Errorf("maxTrustees %d below threshold %d", maxTrustees, threshold)
	}
	return &Ceremony{
		electionID:  bytes.Clone(electionID),
		threshold:   threshold,
		maxTrustees: maxTrustees,
		curveType:   curveType,
		phase:       PhaseCreated,
		commitments: make(map[string]*trusteeCommitment),
	}, nil
}

// ElectionID returns the election this ceremony belongs to.
func (c *Ceremony) ElectionID() types.HexBytes {
	return c.electionID
}

// Threshold returns the number of trustees required to decrypt.
func (c *Ceremony) Threshold() int {
	return c.threshold
}

// RegisterTrustee adds a trustee to the committee and assigns it the next
// share index. When the committee is complete the ceremony advances to the
// commitment phase.
func (c *Ceremony) RegisterTrustee(name string, publicKey []byte) (*Trustee, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase > PhaseRegistration {
		return nil, ErrCeremonyClosed
	}
	for _, t := range c.trustees {
		if bytes.Equal(t.PublicKey, publicKey) {
			return nil, ErrDuplicateRegistration
		}
	}
	c.phase = PhaseRegistration

	trustee := &Trustee{
		ID:         fmt.Sprintf("%x-%d", c.electionID, len(c.trustees)+1),
		ElectionID: c.electionID,
		Name:       name,
		PublicKey:  bytes.Clone(publicKey),
		ShareIndex: len(c.trustees) + 1,
		Status:     TrusteeStatusRegistered,
	}
	c.trustees = append(c.trustees, trustee)

	if len(c.trustees) == c.maxTrustees {
		c.phase = PhaseCommitment
		log.Infow("ceremony registration complete",
			"electionId", c.electionID.String(),
			"trustees", len(c.trustees),
			"threshold", c.threshold,
		)
	}
	return trustee, nil
}

// SubmitCommitment records the Feldman commitment vector of a trustee. The
// vector must have exactly threshold-1 points. Resubmission by the same
// trustee before finalization overwrites the previous vector. When the
// number of distinct committed trustees reaches the threshold, the
// ceremony finalizes: the joint public key is the sum of the committed
// constant-term commitments and the phase becomes FINALIZED.
//
// A trustee whose commitment is already recorded may resubmit after
// finalization and observes the result instead of an error; anyone else is
// rejected with ErrCeremonyAlreadyFinalized.
func (c *Ceremony) SubmitCommitment(trusteeID string, commitmentHash []byte, commitments []Commitment) (*Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	trustee := c.trusteeByID(trusteeID)
	if trustee == nil {
		return nil, ErrUnknownTrustee
	}
	if c.phase == PhaseFinalized {
		if _, committed := c.commitments[trusteeID]; committed {
			return c.status(), nil
		}
		return nil, ErrCeremonyAlreadyFinalized
	}
	if c.phase != PhaseCommitment {
		return nil, ErrNotInCommitmentPhase
	}
	if len(commitments) == 0 || len(commitments) != c.threshold-1 {
		return nil, fmt.Errorf("%w: got %d points, want %d",
			ErrInvalidCommitmentShape, len(commitments), c.threshold-1)
	}
	for i, cm := range commitments {
		if cm.X == nil || cm.Y == nil {
			return nil, fmt.Errorf("%w: point %d has missing coordinates", ErrInvalidCommitmentShape, i)
		}
	}

	c.commitments[trusteeID] = &trusteeCommitment{
		Hash:        bytes.Clone(commitmentHash),
		Commitments: commitments,
	}
	trustee.Status = TrusteeStatusCommitted

	if len(c.commitments) == c.threshold {
		c.finalize()
	}
	return c.status(), nil
}

// finalize combines the constant-term commitments of all committed
// trustees into the joint public key. Callers must hold the lock.
func (c *Ceremony) finalize() {
	joint := curves.New(c.curveType)
	for _, tc := range c.commitments {
		point := curves.New(c.curveType).SetPoint(
			tc.Commitments[0].X.MathBigInt(),
			tc.Commitments[0].Y.MathBigInt(),
		)
		joint.Add(joint, point)
	}
	c.jointKey = joint
	c.phase = PhaseFinalized
	log.Infow("ceremony finalized",
		"electionId", c.electionID.String(),
		"threshold", c.threshold,
		"participants", len(c.trustees),
	)
}

// Status returns a snapshot of the ceremony state.
func (c *Ceremony) Status() *Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status()
}

func (c *Ceremony) status() *Status {
	s := &Status{
		Phase:           c.phase.String(),
		RegisteredCount: len(c.trustees),
		RequiredCount:   c.threshold,
		CommittedCount:  len(c.commitments),
	}
	if c.jointKey != nil {
		s.JointKey = c.jointKey.Marshal()
	}
	return s
}

// JointPublicKey returns the finalized joint public key.
func (c *Ceremony) JointPublicKey() (ecc.Point, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseFinalized {
		return nil, fmt.Errorf("ceremony not finalized (phase %s)", c.phase)
	}
	key := curves.New(c.curveType)
	key.Set(c.jointKey)
	return key, nil
}

// Trustees returns a copy of the registered trustee list.
func (c *Ceremony) Trustees() []*Trustee {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Trustee, len(c.trustees))
	for i, t := range c.trustees {
		cp := *t
		out[i] = &cp
	}
	return out
}

func (c *Ceremony) trusteeByID(id string) *Trustee {
	for _, t := range c.trustees {
		if t.ID == id {
			return t
		}
	}
	return nil
}
