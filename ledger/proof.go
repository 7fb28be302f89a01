package ledger

import (
	"bytes"
	"fmt"

	"github.com/vocdoni/trustcore/types"
)

// Sibling side markers recorded in proof paths. The sorted pair combiner
// makes verification order independent, the markers document the tree
// shape for external auditors.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// Proof is a Merkle inclusion proof for one ledger entry. It is bound to
// the root it was generated against; later appends change the root and a
// stale proof no longer verifies against the new one.
type Proof struct {
	Leaf types.HexBytes `json:"leaf"`
	// Siblings travels on the wire as "proof", the name external
	// verifiers know the sibling path by.
	Siblings  []types.HexBytes `json:"proof"`
	Positions []string         `json:"positions"`
	Root      types.HexBytes   `json:"root"`
}

// Proof generates an inclusion proof for the entry at a position against
// the current root.
func (l *Ledger) Proof(position int) (*Proof, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.proof(position)
}

func (l *Ledger) proof(position int) (*Proof, error) {
	if position < 0 || position >= len(l.levels[0]) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidPosition, position, len(l.levels[0]))
	}
	p := &Proof{
		Leaf: bytes.Clone(l.levels[0][position]),
		Root: l.root(),
	}
	idx := position
	for lvl := 0; len(l.levels[lvl]) > 1; lvl++ {
		nodes := l.levels[lvl]
		sibling := idx ^ 1
		if sibling < len(nodes) {
			p.Siblings = append(p.Siblings, bytes.Clone(nodes[sibling]))
			if sibling < idx {
				p.Positions = append(p.Positions, SideLeft)
			} else {
				p.Positions = append(p.Positions, SideRight)
			}
		}
		// an unpaired node was promoted, nothing to include at this level
		idx >>= 1
	}
	return p, nil
}

// VerifyProof checks an inclusion proof. It is a pure function of the
// proof contents and requires no ledger state, so any holder of a root
// can audit independently.
func VerifyProof(p *Proof) bool {
	if p == nil || len(p.Leaf) != types.HashSize || len(p.Root) != types.HashSize {
		return false
	}
	node := []byte(p.Leaf)
	for _, sibling := range p.Siblings {
		if len(sibling) != types.HashSize {
			return false
		}
		node = hashPair(node, sibling)
	}
	return bytes.Equal(node, p.Root)
}
