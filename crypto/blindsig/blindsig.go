// Package blindsig implements the Chaum blind-signature scheme over RSA
// used to issue anonymous voting credentials. The authority signs a blinded
// message and never observes the credential it certifies, so an issued
// credential cannot be linked back to the registration that produced it.
package blindsig

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/vocdoni/trustcore/crypto/modular"
	"github.com/vocdoni/trustcore/types"
	"github.com/vocdoni/trustcore/util"
)

// ErrDecoding is returned when a hex-encoded big integer cannot be decoded.
var ErrDecoding = errors.New("malformed hex input")

// PublicKey is the RSA public key of a credential authority.
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// PrivateKey is the RSA private key of a credential authority. It must
// never leave the issuing process boundary.
type PrivateKey struct {
	PublicKey
	D *big.Int
}

// AuthorityKeys bundles the keypair of a credential authority for one
// election. KeyID is derived from the public key.
type AuthorityKeys struct {
	KeyID   string
	Public  PublicKey
	Private PrivateKey
}

// Credential is the anonymous voting credential held by a voter. Message is
// sha256(electionID || nullifier) reduced into [0, N).
type Credential struct {
	ElectionID types.HexBytes `json:"electionId"`
	Nullifier  types.HexBytes `json:"nullifier"`
	Message    *types.BigInt  `json:"message"`
}

// BlindedData is the transient blinding state held by the voter during
// issuance. R must stay secret until unblinding and is never sent to the
// authority.
type BlindedData struct {
	Blinded *big.Int
	R       *big.Int
}

// SignedCredential is a credential together with the authority signature
// over its message: Signature^e mod N == Message.
type SignedCredential struct {
	Credential
	Signature *types.BigInt `json:"signature"`
}

// GenerateKeys creates a fresh authority keypair of the given modulus size.
// Moduli below types.MinModulusBits are rejected.
func GenerateKeys(bits int) (*AuthorityKeys, error) {
	if bits < types.MinModulusBits {
		return nil, fmt.Errorf("modulus size %d below minimum %d", bits, types.MinModulusBits)
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	pub := PublicKey{
		N: new(big.Int).Set(key.N),
		E: big.NewInt(int64(key.E)),
	}
	id := sha256.Sum256(pub.N.Bytes())
	return &AuthorityKeys{
		KeyID:  hex.EncodeToString(id[:12]),
		Public: pub,
		Private: PrivateKey{
			PublicKey: pub,
			D:         new(big.Int).Set(key.D),
		},
	}, nil
}

// NewCredential creates a fresh credential for an election: a random
// 32-byte nullifier and the message hash bound to it.
func NewCredential(electionID []byte, pub *PublicKey) (*Credential, error) {
	if pub == nil || pub.N == nil || pub.N.Sign() <= 0 {
		return nil, fmt.Errorf("invalid public key")
	}
	nullifier := util.RandomBytes(types.NullifierSize)
	msg := CredentialMessage(electionID, nullifier, pub)
	return &Credential{
		ElectionID: electionID,
		Nullifier:  nullifier,
		Message:    (*types.BigInt)(msg),
	}, nil
}

// CredentialMessage computes sha256(electionID || nullifier) reduced into
// [0, N). Both sides of the protocol must derive the message this way.
func CredentialMessage(electionID, nullifier []byte, pub *PublicKey) *big.Int {
	h := sha256.New()
	h.Write(electionID)
	h.Write(nullifier)
	msg := new(big.Int).SetBytes(h.Sum(nil))
	return msg.Mod(msg, pub.N)
}

// BlindMessage blinds a credential message for signing: it picks a random
// blinding factor r coprime with N and returns message * r^e mod N. The
// gcd rejection loop cannot stall against a valid RSA modulus.
func BlindMessage(message *big.Int, pub *PublicKey) (*BlindedData, error) {
	if pub == nil || pub.N == nil || pub.N.Cmp(big.NewInt(2)) <= 0 {
		return nil, fmt.Errorf("invalid public key")
	}
	one := big.NewInt(1)
	var r *big.Int
	for {
		var err error
		r, err = rand.Int(rand.Reader, pub.N)
		if err != nil {
			return nil, fmt.Errorf("sample blinding factor: %w", err)
		}
		if r.Cmp(one) <= 0 {
			continue
		}
		if modular.GCD(r, pub.N).Cmp(one) == 0 {
			break
		}
	}
	re, err := modular.Exp(r, pub.E, pub.N)
	if err != nil {
		return nil, err
	}
	blinded := new(big.Int).Mul(new(big.Int).Mod(message, pub.N), re)
	blinded.Mod(blinded, pub.N)
	return &BlindedData{Blinded: blinded, R: r}, nil
}

// SignBlinded computes the authority signature over a blinded message:
// blinded^d mod N. The authority never sees the message nor the blinding
// factor.
func SignBlinded(blinded *big.Int, priv *PrivateKey) (*big.Int, error) {
	if priv == nil || priv.D == nil {
		return nil, fmt.Errorf("invalid private key")
	}
	return modular.Exp(blinded, priv.D, priv.N)
}

// UnblindSignature removes the blinding factor from a signature issued over
// the blinded message: signed * r^-1 mod N.
func UnblindSignature(signed, r *big.Int, pub *PublicKey) (*big.Int, error) {
	rInv, err := modular.Inverse(r, pub.N)
	if err != nil {
		return nil, fmt.Errorf("invert blinding factor: %w", err)
	}
	sig := new(big.Int).Mul(signed, rInv)
	return sig.Mod(sig, pub.N), nil
}

// VerifySignature reports whether signature^e mod N equals the message.
// A mismatch is not an error, callers must treat false as a rejected
// credential rather than a system failure.
func VerifySignature(message, signature *big.Int, pub *PublicKey) bool {
	if pub == nil || pub.N == nil || pub.N.Sign() <= 0 {
		return false
	}
	recovered, err := modular.Exp(signature, pub.E, pub.N)
	if err != nil {
		return false
	}
	expected := new(big.Int).Mod(message, pub.N)
	return modular.EqualConstantTime(recovered, expected)
}
