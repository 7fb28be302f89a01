// Package ledger implements the append-only vote ledger: an incremental
// Merkle accumulator over vote entries plus a nullifier registry that
// rejects double votes. Appends touch O(log n) nodes, a full tree rebuild
// per vote would be intolerable at election scale.
package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vocdoni/trustcore/types"
)

var (
	// ErrDuplicateNullifier is returned when an entry carries a nullifier
	// already present in the ledger.
	ErrDuplicateNullifier = errors.New("duplicate nullifier")
	// ErrInvalidPosition is returned when a proof is requested for a
	// position outside the ledger.
	ErrInvalidPosition = errors.New("invalid ledger position")
	// ErrInvalidEntry is returned when an entry is missing required fields.
	ErrInvalidEntry = errors.New("invalid ledger entry")
)

// Entry is one recorded vote. EncryptedVote, Commitment and ZKProof are
// opaque payloads produced by the external encryption and proof subsystem;
// the ledger never interprets them.
type Entry struct {
	ID            string         `json:"id"            cbor:"0,keyasint"`
	EncryptedVote string         `json:"encryptedVote" cbor:"1,keyasint"`
	Commitment    string         `json:"commitment"    cbor:"2,keyasint"`
	ZKProof       []string       `json:"zkProof"       cbor:"3,keyasint,omitempty"`
	Nullifier     types.HexBytes `json:"nullifier"     cbor:"4,keyasint"`
	Timestamp     time.Time      `json:"timestamp"     cbor:"5,keyasint"`
}

// Snapshot is a point-in-time summary of the accumulator, consumed by the
// external anchoring service.
type Snapshot struct {
	Root      types.HexBytes `json:"root"`
	VoteCount int            `json:"voteCount"`
	Timestamp time.Time      `json:"timestamp"`
}

// Ledger is the per-election vote accumulator. It must not be shared
// across elections; the protocol layer owns one instance per election.
type Ledger struct {
	mu sync.RWMutex

	entries []*Entry
	// levels[0] holds the leaf hashes; levels[l+1] the pairwise parents.
	// An unpaired last node is promoted to the next level unchanged, so
	// each level above a non-empty one is ceil(half) the size.
	levels [][][]byte
	// nullifiers maps the hex form of each seen nullifier to its position.
	nullifiers map[string]int
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		levels:     [][][]byte{nil},
		nullifiers: make(map[string]int),
	}
}

// LeafHash computes the leaf digest of an entry. It covers exactly the
// stable fields {id, encryptedVote, commitment, nullifier}, each length
// prefixed so field boundaries cannot be confused; timestamps and proof
// payloads stay out so proofs are deterministic.
func LeafHash(e *Entry) []byte {
	h := sha256.New()
	for _, field := range [][]byte{
		[]byte(e.ID),
		[]byte(e.EncryptedVote),
		[]byte(e.Commitment),
		e.Nullifier,
	} {
		var size [4]byte
		binary.BigEndian.PutUint32(size[:], uint32(len(field)))
		h.Write(size[:])
		h.Write(field)
	}
	return h.Sum(nil)
}

// hashPair combines two sibling hashes into their parent. The pair is
// sorted first, so proof verification does not depend on sibling order.
func hashPair(a, b []byte) []byte {
	if bytes.Compare(b, a) < 0 {
		a, b = b, a
	}
	h := sha256.New()
	h.Write(a)
	h.Write(b)
	return h.Sum(nil)
}

// validate checks the presence of the fields the accumulator depends on.
func validate(e *Entry) error {
	if e == nil {
		return fmt.Errorf("%w: nil entry", ErrInvalidEntry)
	}
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidEntry)
	}
	if e.EncryptedVote == "" {
		return fmt.Errorf("%w: missing encrypted vote", ErrInvalidEntry)
	}
	if e.Commitment == "" {
		return fmt.Errorf("%w: missing commitment", ErrInvalidEntry)
	}
	if len(e.Nullifier) != types.NullifierSize {
		return fmt.Errorf("%w: nullifier must be %d bytes, got %d",
			ErrInvalidEntry, types.NullifierSize, len(e.Nullifier))
	}
	return nil
}

// Append adds an entry to the ledger and returns its position and the
// inclusion proof against the new root. It fails with
// ErrDuplicateNullifier if the nullifier was already recorded.
func (l *Ledger) Append(e *Entry) (int, *Proof, error) {
	if err := validate(e); err != nil {
		return 0, nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	key := e.Nullifier.String()
	if _, used := l.nullifiers[key]; used {
		return 0, nil, fmt.Errorf("%w: %s", ErrDuplicateNullifier, key)
	}

	position := len(l.entries)
	l.entries = append(l.entries, e)
	l.nullifiers[key] = position
	l.insertLeaf(LeafHash(e))

	proof, err := l.proof(position)
	if err != nil {
		// an internally generated proof must always exist
		return 0, nil, fmt.Errorf("internal: proof of fresh entry: %w", err)
	}
	return position, proof, nil
}

// insertLeaf pushes a leaf hash and recomputes the ancestor path. Only the
// rightmost node of each level can change, so the walk is O(log n).
func (l *Ledger) insertLeaf(leaf []byte) {
	l.levels[0] = append(l.levels[0], leaf)
	for lvl := 0; len(l.levels[lvl]) > 1; lvl++ {
		if len(l.levels) == lvl+1 {
			l.levels = append(l.levels, nil)
		}
		nodes := l.levels[lvl]
		parentIdx := (len(nodes) - 1) / 2
		last := nodes[len(nodes)-1]

		var parent []byte
		if len(nodes)%2 == 0 {
			parent = hashPair(nodes[len(nodes)-2], last)
		} else {
			// no sibling yet, promote
			parent = last
		}
		if parentIdx < len(l.levels[lvl+1]) {
			l.levels[lvl+1][parentIdx] = parent
		} else {
			l.levels[lvl+1] = append(l.levels[lvl+1], parent)
		}
	}
}

// Root returns the current accumulator root. An empty ledger has a nil
// root.
func (l *Ledger) Root() types.HexBytes {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.root()
}

func (l *Ledger) root() types.HexBytes {
	top := l.levels[len(l.levels)-1]
	if len(top) == 0 {
		return nil
	}
	return bytes.Clone(top[0])
}

// Count returns the number of entries in the ledger.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// HasNullifier reports whether a nullifier is already recorded.
func (l *Ledger) HasNullifier(nullifier types.HexBytes) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, used := l.nullifiers[nullifier.String()]
	return used
}

// Entry returns the entry stored at a position.
func (l *Ledger) Entry(position int) (*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if position < 0 || position >= len(l.entries) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidPosition, position, len(l.entries))
	}
	return l.entries[position], nil
}

// Snapshot returns the current root, count and time, for anchoring.
func (l *Ledger) Snapshot() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &Snapshot{
		Root:      l.root(),
		VoteCount: len(l.entries),
		Timestamp: time.Now().UTC(),
	}
}

// Export returns the ordered entry list for persistence. Import on the
// result reproduces an identical root and count.
func (l *Ledger) Export() []*Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Import rebuilds a ledger from a persisted entry list in one batch. The
// rebuild hashes each level once, which is linear overall, matching the
// amortized cost of appending every entry.
func Import(entries []*Entry) (*Ledger, error) {
	l := New()
	l.entries = make([]*Entry, 0, len(entries))
	leaves := make([][]byte, 0, len(entries))
	for i, e := range entries {
		if err := validate(e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		key := e.Nullifier.String()
		if _, used := l.nullifiers[key]; used {
			return nil, fmt.Errorf("entry %d: %w: %s", i, ErrDuplicateNullifier, key)
		}
		l.nullifiers[key] = i
		l.entries = append(l.entries, e)
		leaves = append(leaves, LeafHash(e))
	}
	l.levels = buildLevels(leaves)
	return l, nil
}

// buildLevels computes all tree levels bottom-up from the leaf hashes.
func buildLevels(leaves [][]byte) [][][]byte {
	levels := [][][]byte{leaves}
	for nodes := leaves; len(nodes) > 1; {
		parents := make([][]byte, 0, (len(nodes)+1)/2)
		for i := 0; i < len(nodes); i += 2 {
			if i+1 < len(nodes) {
				parents = append(parents, hashPair(nodes[i], nodes[i+1]))
			} else {
				parents = append(parents, nodes[i])
			}
		}
		levels = append(levels, parents)
		nodes = parents
	}
	return levels
}
