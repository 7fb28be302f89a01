package storage

import (
	"fmt"

	"github.com/vocdoni/trustcore/ceremony"
	"github.com/vocdoni/trustcore/types"
)

// SetCeremonyState persists the ceremony state of an election. The state
// is overwritten on every phase change, so after a restart the ceremony
// resumes where it left off.
func (s *Storage) SetCeremonyState(electionID types.HexBytes, state *ceremony.State) error {
	if state == nil {
		return fmt.Errorf("nil ceremony state")
	}
	return s.setArtifact(ceremonyPrefix, electionID, state)
}

// CeremonyState loads the persisted ceremony state of an election.
// Returns ErrNotFound if no ceremony was stored.
func (s *Storage) CeremonyState(electionID types.HexBytes) (*ceremony.State, error) {
	state := &ceremony.State{}
	if err := s.getArtifact(ceremonyPrefix, electionID, state); err != nil {
		return nil, err
	}
	return state, nil
}
