package blindsig

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/trustcore/types"
	"github.com/vocdoni/trustcore/util"
)

// EncodeBigInt returns the canonical hex form of i: minimal length,
// lowercase, no 0x prefix.
func EncodeBigInt(i *big.Int) string {
	return i.Text(16)
}

// DecodeBigInt parses a canonical hex big integer. An optional 0x prefix is
// tolerated on input. Malformed strings fail with ErrDecoding.
func DecodeBigInt(s string) (*big.Int, error) {
	s = util.TrimHex(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrDecoding)
	}
	i, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDecoding, s)
	}
	return i, nil
}

// EncodePublicKey converts a public key to its wire form.
func EncodePublicKey(pub *PublicKey) types.AuthorityPublicKey {
	return types.AuthorityPublicKey{
		N: EncodeBigInt(pub.N),
		E: EncodeBigInt(pub.E),
	}
}

// DecodePublicKey parses a wire-form public key.
func DecodePublicKey(k types.AuthorityPublicKey) (*PublicKey, error) {
	n, err := DecodeBigInt(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	e, err := DecodeBigInt(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	return &PublicKey{N: n, E: e}, nil
}
