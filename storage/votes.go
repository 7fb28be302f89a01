package storage

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/vocdoni/trustcore/ledger"
	"github.com/vocdoni/trustcore/types"
)

// voteKey builds the storage key of a ledger entry: the election ID
// followed by the big-endian position, so iteration yields ledger order.
func voteKey(electionID types.HexBytes, position int) []byte {
	key := make([]byte, len(electionID)+8)
	copy(key, electionID)
	binary.BigEndian.PutUint64(key[len(electionID):], uint64(position))
	return key
}

// AppendVote persists a ledger entry at its position.
func (s *Storage) AppendVote(electionID types.HexBytes, position int, e *ledger.Entry) error {
	if e == nil {
		return fmt.Errorf("nil ledger entry")
	}
	return s.setArtifact(votePrefix, voteKey(electionID, position), e)
}

// DeleteVote removes the entry persisted at a position. It exists to
// undo a half-finished submission; recorded votes are never deleted.
func (s *Storage) DeleteVote(electionID types.HexBytes, position int) error {
	return s.deleteArtifact(votePrefix, voteKey(electionID, position))
}

// Votes loads the persisted ledger entries of an election in append
// order. The result feeds ledger.Import on startup.
func (s *Storage) Votes(electionID types.HexBytes) ([]*ledger.Entry, error) {
	keys, err := s.listArtifacts(votePrefix)
	if err != nil {
		return nil, err
	}
	type positioned struct {
		pos   uint64
		entry *ledger.Entry
	}
	var found []positioned
	for _, k := range keys {
		if len(k) < len(electionID)+8 {
			continue
		}
		if string(k[:len(electionID)]) != string(electionID) {
			continue
		}
		e := &ledger.Entry{}
		if err := s.getArtifact(votePrefix, k, e); err != nil {
			return nil, fmt.Errorf("load vote %x: %w", k, err)
		}
		found = append(found, positioned{
			pos:   binary.BigEndian.Uint64(k[len(k)-8:]),
			entry: e,
		})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].pos < found[j].pos })
	entries := make([]*ledger.Entry, len(found))
	for i, f := range found {
		if f.pos != uint64(i) {
			return nil, fmt.Errorf("vote position gap: expected %d, got %d", i, f.pos)
		}
		entries[i] = f.entry
	}
	return entries, nil
}

// SetSnapshot stores a ledger snapshot for later anchoring. Snapshots
// accumulate, keyed by the hash of their contents.
func (s *Storage) SetSnapshot(electionID types.HexBytes, snap *ledger.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	data, err := encodeArtifact(snap)
	if err != nil {
		return err
	}
	key := append([]byte{}, electionID...)
	key = append(key, hashKey(data)...)
	return s.setArtifact(snapshotPrefix, key, snap)
}

// Snapshots returns all stored snapshots of an election, newest last.
func (s *Storage) Snapshots(electionID types.HexBytes) ([]*ledger.Snapshot, error) {
	keys, err := s.listArtifacts(snapshotPrefix)
	if err != nil {
		return nil, err
	}
	var snaps []*ledger.Snapshot
	for _, k := range keys {
		if len(k) < len(electionID) || string(k[:len(electionID)]) != string(electionID) {
			continue
		}
		snap := &ledger.Snapshot{}
		if err := s.getArtifact(snapshotPrefix, k, snap); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Timestamp.Before(snaps[j].Timestamp) })
	return snaps, nil
}
