package protocol

import (
	"fmt"

	"github.com/vocdoni/trustcore/crypto/blindsig"
	"github.com/vocdoni/trustcore/log"
	"github.com/vocdoni/trustcore/types"
)

// IssuedCredential is the authority's response to a blind signing
// request. The signature covers the blinded message, so the authority
// never sees the credential it signs.
type IssuedCredential struct {
	KeyID           string `json:"keyId"`
	BlindedSignature string `json:"blindedSignature"`
}

// IssueCredential signs a blinded credential message. Issuance is only
// open while the election is in registration status.
func (p *Protocol) IssueCredential(id types.HexBytes, blindedHex string) (*IssuedCredential, error) {
	es, err := p.electionState(id)
	if err != nil {
		return nil, err
	}
	p.mu.RLock()
	status := es.election.Status
	p.mu.RUnlock()
	if status != types.ElectionStatusRegistration {
		return nil, fmt.Errorf("%w: status is %s", ErrIssuanceClosed, status)
	}
	blinded, err := blindsig.DecodeBigInt(blindedHex)
	if err != nil {
		return nil, fmt.Errorf("decode blinded message: %w", err)
	}
	signed, err := blindsig.SignBlinded(blinded, &es.keys.Private)
	if err != nil {
		return nil, fmt.Errorf("sign blinded message: %w", err)
	}
	log.Debugw("credential issued",
		"electionId", id.String(),
		"keyId", es.keys.KeyID,
	)
	return &IssuedCredential{
		KeyID:           es.keys.KeyID,
		BlindedSignature: blindsig.EncodeBigInt(signed),
	}, nil
}

// AuthorityPublicKey returns the credential verification key of an
// election.
func (p *Protocol) AuthorityPublicKey(id types.HexBytes) (*types.AuthorityPublicKey, error) {
	es, err := p.electionState(id)
	if err != nil {
		return nil, err
	}
	pub := blindsig.EncodePublicKey(&es.keys.Public)
	return &pub, nil
}
