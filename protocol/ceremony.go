package protocol

import (
	"fmt"

	"github.com/vocdoni/trustcore/ceremony"
	"github.com/vocdoni/trustcore/types"
)

// RegisterTrustee adds a trustee to the election's key ceremony and
// persists the updated ceremony state.
func (p *Protocol) RegisterTrustee(id types.HexBytes, name string, publicKey types.HexBytes) (*ceremony.Trustee, error) {
	es, err := p.electionState(id)
	if err != nil {
		return nil, err
	}
	trustee, err := es.ceremony.RegisterTrustee(name, publicKey)
	if err != nil {
		return nil, err
	}
	if err := p.stg.SetCeremonyState(id, es.ceremony.State()); err != nil {
		return nil, fmt.Errorf("persist ceremony: %w", err)
	}
	return trustee, nil
}

// SubmitCommitment records a trustee's Feldman commitment vector. When
// the submission finalizes the ceremony, the joint public key is copied
// into the election record.
func (p *Protocol) SubmitCommitment(id types.HexBytes, trusteeID string, commitmentHash types.HexBytes, commitments []ceremony.Commitment) (*ceremony.Status, error) {
	es, err := p.electionState(id)
	if err != nil {
		return nil, err
	}
	status, err := es.ceremony.SubmitCommitment(trusteeID, commitmentHash, commitments)
	if err != nil {
		return nil, err
	}
	if err := p.stg.SetCeremonyState(id, es.ceremony.State()); err != nil {
		return nil, fmt.Errorf("persist ceremony: %w", err)
	}
	if len(status.JointKey) > 0 {
		p.mu.Lock()
		if len(es.election.JointKey) == 0 {
			es.election.JointKey = status.JointKey
			err = p.stg.SetElection(es.election)
		}
		p.mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("persist joint key: %w", err)
		}
	}
	return status, nil
}

// CeremonyStatus returns a snapshot of the election's key ceremony.
func (p *Protocol) CeremonyStatus(id types.HexBytes) (*ceremony.Status, error) {
	es, err := p.electionState(id)
	if err != nil {
		return nil, err
	}
	return es.ceremony.Status(), nil
}

// Trustees lists the registered trustees of an election.
func (p *Protocol) Trustees(id types.HexBytes) ([]*ceremony.Trustee, error) {
	es, err := p.electionState(id)
	if err != nil {
		return nil, err
	}
	return es.ceremony.Trustees(), nil
}
