package ceremony

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/trustcore/crypto/ecc"
	"github.com/vocdoni/trustcore/crypto/ecc/curves"
	"github.com/vocdoni/trustcore/crypto/secies"
	"github.com/vocdoni/trustcore/types"
)

// SharePacket is the encrypted polynomial share a dealer sends to one
// trustee. Only the recipient can decrypt the ciphertext; everyone can
// later verify the decrypted share against the dealer's commitments.
type SharePacket struct {
	DealerID       string         `json:"dealerId"       cbor:"0,keyasint"`
	RecipientIndex int            `json:"recipientIndex" cbor:"1,keyasint"`
	Ciphertext     *types.BigInt  `json:"ciphertext"     cbor:"2,keyasint"`
	Ephemeral      types.HexBytes `json:"ephemeral"      cbor:"3,keyasint"`
	Commitments    []Commitment   `json:"commitments"    cbor:"4,keyasint"`
}

// DistributeShares evaluates the dealer's polynomial at every trustee's
// share index and encrypts each share to that trustee's public key. The
// trustee public keys must be marshaled points of the ceremony curve.
func DistributeShares(dealerID string, poly *Polynomial, trustees []*Trustee, curveType string) ([]*SharePacket, error) {
	cipher, err := secies.New(nil, curves.New(curveType), nil)
	if err != nil {
		return nil, fmt.Errorf("init share cipher: %w", err)
	}
	commitments := poly.Commitments()
	packets := make([]*SharePacket, 0, len(trustees))
	for _, trustee := range trustees {
		recipient := curves.New(curveType)
		if err := recipient.Unmarshal(trustee.PublicKey); err != nil {
			return nil, fmt.Errorf("trustee %s public key: %w", trustee.ID, err)
		}
		share := poly.Share(trustee.ShareIndex)
		ct, ephemeral, err := cipher.Encrypt(share, recipient)
		if err != nil {
			return nil, fmt.Errorf("encrypt share for %s: %w", trustee.ID, err)
		}
		packets = append(packets, &SharePacket{
			DealerID:       dealerID,
			RecipientIndex: trustee.ShareIndex,
			Ciphertext:     (*types.BigInt)(ct),
			Ephemeral:      ephemeral,
			Commitments:    commitments,
		})
	}
	return packets, nil
}

// OpenSharePacket decrypts a share packet with the recipient's private
// key and verifies the share against the dealer's commitments. A share
// that does not match the commitments means a misbehaving dealer.
func OpenSharePacket(packet *SharePacket, privateKey *big.Int, curveType string) (*big.Int, error) {
	if packet == nil || packet.Ciphertext == nil {
		return nil, fmt.Errorf("empty share packet")
	}
	cipher, err := secies.New(privateKey, curves.New(curveType), nil)
	if err != nil {
		return nil, fmt.Errorf("init share cipher: %w", err)
	}
	share, err := cipher.Decrypt(packet.Ciphertext.MathBigInt(), packet.Ephemeral)
	if err != nil {
		return nil, fmt.Errorf("decrypt share: %w", err)
	}
	if !VerifyShare(share, packet.RecipientIndex, packet.Commitments, curveType) {
		return nil, fmt.Errorf("share from dealer %s does not match its commitments", packet.DealerID)
	}
	return share, nil
}

// MarkShareReceived records that a trustee obtained and verified all of
// its share packets.
func (c *Ceremony) MarkShareReceived(trusteeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	trustee := c.trusteeByID(trusteeID)
	if trustee == nil {
		return ErrUnknownTrustee
	}
	trustee.Status = TrusteeStatusShareReceived
	return nil
}

// TrusteeKeyPair generates a communication keypair for a trustee on the
// ceremony curve. The marshaled public key is what RegisterTrustee
// expects when shares will be distributed.
func TrusteeKeyPair(curveType string) (*big.Int, ecc.Point, error) {
	cipher, err := secies.New(nil, curves.New(curveType), nil)
	if err != nil {
		return nil, nil, err
	}
	return cipher.PrivateKey(), cipher.PublicKeyPoint(), nil
}
