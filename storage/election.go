package storage

import (
	"fmt"

	"github.com/vocdoni/trustcore/types"
)

// Election retrieves an election from the storage. It returns ErrNotFound
// if the election does not exist.
func (s *Storage) Election(id types.HexBytes) (*types.Election, error) {
	e := &types.Election{}
	if err := s.getArtifact(electionPrefix, id, e); err != nil {
		return nil, err
	}
	return e, nil
}

// SetElection stores an election, overwriting any previous version.
func (s *Storage) SetElection(e *types.Election) error {
	if e == nil {
		return fmt.Errorf("nil election")
	}
	if len(e.ID) == 0 {
		return fmt.Errorf("election without id")
	}
	return s.setArtifact(electionPrefix, e.ID, e)
}

// ListElections returns the IDs of all stored elections.
func (s *Storage) ListElections() ([][]byte, error) {
	return s.listArtifacts(electionPrefix)
}

// DeleteElection removes an election with its authority keys and
// ceremony state. Vote entries are never deleted, the ledger is append
// only.
func (s *Storage) DeleteElection(id types.HexBytes) error {
	for _, prefix := range [][]byte{electionPrefix, authorityKeyPrefix, ceremonyPrefix} {
		if err := s.deleteArtifact(prefix, id); err != nil {
			return err
		}
	}
	return nil
}

// SetElectionStatus updates only the status of a stored election.
func (s *Storage) SetElectionStatus(id types.HexBytes, status types.ElectionStatus) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	e, err := s.Election(id)
	if err != nil {
		return err
	}
	e.Status = status
	return s.setArtifact(electionPrefix, e.ID, e)
}
