// Package secies implements scalar ECIES: encryption of field scalars to
// an elliptic curve public key. The ceremony uses it so trustees can send
// each other polynomial shares without the coordinator learning them.
package secies

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/vocdoni/trustcore/crypto/ecc"
)

// Cipher encapsulates one participant's keypair for scalar encryption.
type Cipher struct {
	privateKey *big.Int
	publicKey  ecc.Point
	curvePoint ecc.Point
	hashFunc   func([]byte) [32]byte
}

// New initializes a Cipher over the given curve. A nil privateKey
// generates a fresh keypair; a nil hashFunc defaults to SHA-256.
func New(privateKey *big.Int, curve ecc.Point, hashFunc func([]byte) [32]byte) (*Cipher, error) {
	if curve == nil {
		return nil, fmt.Errorf("curve cannot be nil")
	}
	c := &Cipher{
		curvePoint: curve,
		hashFunc:   hashFunc,
	}
	if hashFunc == nil {
		c.hashFunc = sha256.Sum256
	}
	if privateKey == nil {
		if err := c.generateKeys(); err != nil {
			return nil, err
		}
		return c, nil
	}
	c.privateKey = privateKey
	publicKey := curve.New()
	publicKey.ScalarBaseMult(privateKey)
	c.publicKey = publicKey
	return c, nil
}

func (c *Cipher) generateKeys() error {
	order := c.curvePoint.Order()
	privateKey, err := rand.Int(rand.Reader, order)
	if err != nil {
		return err
	}
	if privateKey.Sign() == 0 {
		privateKey.Add(privateKey, big.NewInt(1))
	}
	c.privateKey = privateKey

	publicKey := c.curvePoint.New()
	publicKey.ScalarBaseMult(privateKey)
	c.publicKey = publicKey
	return nil
}

// PublicKey returns the marshaled public key.
func (c *Cipher) PublicKey() []byte {
	return c.publicKey.Marshal()
}

// PublicKeyPoint returns the public key as a curve point.
func (c *Cipher) PublicKeyPoint() ecc.Point {
	p := c.curvePoint.New()
	p.Set(c.publicKey)
	return p
}

// PrivateKey returns the private key.
func (c *Cipher) PrivateKey() *big.Int {
	return c.privateKey
}

// Encrypt encrypts a scalar to the recipient's public key. It returns
// the ciphertext scalar and the marshaled ephemeral point the recipient
// needs to decrypt.
func (c *Cipher) Encrypt(message *big.Int, recipientPublicKey ecc.Point) (*big.Int, []byte, error) {
	order := c.curvePoint.Order()
	m := new(big.Int).Mod(message, order)

	r, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, nil, err
	}
	if r.Sign() == 0 {
		r.Add(r, big.NewInt(1))
	}

	// R = r*G travels with the ciphertext; S = r*pk is the shared point
	R := c.curvePoint.New()
	R.ScalarBaseMult(r)
	S := c.curvePoint.New()
	S.ScalarMult(recipientPublicKey, r)

	s := c.hashPointToScalar(S)
	ct := new(big.Int).Add(m, s)
	ct.Mod(ct, order)
	return ct, R.Marshal(), nil
}

// Decrypt recovers a scalar from the ciphertext and the sender's
// ephemeral point.
func (c *Cipher) Decrypt(ciphertext *big.Int, ephemeral []byte) (*big.Int, error) {
	R := c.curvePoint.New()
	if err := R.Unmarshal(ephemeral); err != nil {
		return nil, fmt.Errorf("unmarshal ephemeral point: %w", err)
	}
	// the same shared point from the other side: S = sk*R
	S := c.curvePoint.New()
	S.ScalarMult(R, c.privateKey)

	s := c.hashPointToScalar(S)
	order := c.curvePoint.Order()
	m := new(big.Int).Sub(ciphertext, s)
	m.Mod(m, order)
	return m, nil
}

// hashPointToScalar hashes a curve point into a scalar in Fr.
func (c *Cipher) hashPointToScalar(point ecc.Point) *big.Int {
	hashBytes := c.hashFunc(point.Marshal())
	hashInt := new(big.Int).SetBytes(hashBytes[:])
	hashInt.Mod(hashInt, point.Order())
	return hashInt
}
