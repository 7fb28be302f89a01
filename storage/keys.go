package storage

import (
	"fmt"

	"github.com/vocdoni/trustcore/crypto/blindsig"
	"github.com/vocdoni/trustcore/types"
)

// authorityKeyArtifact is the stored form of an authority keypair. The
// big integers are kept as minimal hex strings, the same encoding the
// credential API exposes.
type authorityKeyArtifact struct {
	KeyID string `cbor:"0,keyasint"`
	N     string `cbor:"1,keyasint"`
	E     string `cbor:"2,keyasint"`
	D     string `cbor:"3,keyasint"`
}

// SetAuthorityKeys stores the credential signing keys for an election.
func (s *Storage) SetAuthorityKeys(electionID types.HexBytes, keys *blindsig.AuthorityKeys) error {
	if keys == nil || keys.Private.D == nil {
		return fmt.Errorf("nil authority keys")
	}
	ak := authorityKeyArtifact{
		KeyID: keys.KeyID,
		N:     blindsig.EncodeBigInt(keys.Public.N),
		E:     blindsig.EncodeBigInt(keys.Public.E),
		D:     blindsig.EncodeBigInt(keys.Private.D),
	}
	return s.setArtifact(authorityKeyPrefix, electionID, ak)
}

// AuthorityKeys loads the credential signing keys for an election.
// Returns ErrNotFound if no keys were stored.
func (s *Storage) AuthorityKeys(electionID types.HexBytes) (*blindsig.AuthorityKeys, error) {
	ak := authorityKeyArtifact{}
	if err := s.getArtifact(authorityKeyPrefix, electionID, &ak); err != nil {
		return nil, fmt.Errorf("could not read authority keys: %w", err)
	}
	n, err := blindsig.DecodeBigInt(ak.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	e, err := blindsig.DecodeBigInt(ak.E)
	if err != nil {
		return nil, fmt.Errorf("decode public exponent: %w", err)
	}
	d, err := blindsig.DecodeBigInt(ak.D)
	if err != nil {
		return nil, fmt.Errorf("decode private exponent: %w", err)
	}
	pub := blindsig.PublicKey{N: n, E: e}
	return &blindsig.AuthorityKeys{
		KeyID:   ak.KeyID,
		Public:  pub,
		Private: blindsig.PrivateKey{PublicKey: pub, D: d},
	}, nil
}
