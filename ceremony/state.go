package ceremony

import (
	"fmt"

	"github.com/vocdoni/trustcore/crypto/ecc/curves"
	"github.com/vocdoni/trustcore/types"
)

// State is the serializable form of a ceremony, used by the storage layer
// to persist and reload coordinator state across restarts.
type State struct {
	ElectionID  types.HexBytes                `cbor:"0,keyasint"`
	Threshold   int                           `cbor:"1,keyasint"`
	MaxTrustees int                           `cbor:"2,keyasint"`
	CurveType   string                        `cbor:"3,keyasint"`
	Phase       uint8                         `cbor:"4,keyasint"`
	Trustees    []*Trustee                    `cbor:"5,keyasint"`
	Commitments map[string]*trusteeCommitment `cbor:"6,keyasint"`
	JointKey    types.HexBytes                `cbor:"7,keyasint,omitempty"`
}

// State exports the current ceremony state.
func (c *Ceremony) State() *State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &State{
		ElectionID:  c.electionID,
		Threshold:   c.threshold,
		MaxTrustees: c.maxTrustees,
		CurveType:   c.curveType,
		Phase:       uint8(c.phase),
		Trustees:    c.trustees,
		Commitments: c.commitments,
	}
	if c.jointKey != nil {
		s.JointKey = c.jointKey.Marshal()
	}
	return s
}

// Restore rebuilds a ceremony from a persisted state.
func Restore(s *State) (*Ceremony, error) {
	if s == nil {
		return nil, fmt.Errorf("nil ceremony state")
	}
	c, err := New(s.ElectionID, s.Threshold, s.MaxTrustees, s.CurveType)
	if err != nil {
		return nil, fmt.Errorf("restore ceremony: %w", err)
	}
	c.phase = Phase(s.Phase)
	c.trustees = s.Trustees
	if s.Commitments != nil {
		c.commitments = s.Commitments
	}
	if len(s.JointKey) > 0 {
		key := curves.New(s.CurveType)
		if err := key.Unmarshal(s.JointKey); err != nil {
			return nil, fmt.Errorf("restore joint key: %w", err)
		}
		c.jointKey = key
	}
	return c, nil
}
