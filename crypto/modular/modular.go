// Package modular implements the arbitrary-precision modular arithmetic
// used by the blind-signature credential authority.
package modular

import (
	"crypto/subtle"
	"fmt"
	"math/big"
)

// Exp returns base^exp mod mod. The modulus must be positive.
func Exp(base, exp, mod *big.Int) (*big.Int, error) {
	if mod == nil || mod.Sign() <= 0 {
		return nil, fmt.Errorf("modulus must be positive")
	}
	return new(big.Int).Exp(base, exp, mod), nil
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
}

// Inverse returns the multiplicative inverse of a modulo mod, computed with
// the extended Euclidean algorithm. It fails if a and mod are not coprime.
func Inverse(a, mod *big.Int) (*big.Int, error) {
	if mod == nil || mod.Sign() <= 0 {
		return nil, fmt.Errorf("modulus must be positive")
	}
	r0 := new(big.Int).Set(mod)
	r1 := new(big.Int).Mod(a, mod)
	t0 := big.NewInt(0)
	t1 := big.NewInt(1)

	for r1.Sign() != 0 {
		q := new(big.Int).Div(r0, r1)
		r0, r1 = r1, new(big.Int).Sub(r0, new(big.Int).Mul(q, r1))
		t0, t1 = t1, new(big.Int).Sub(t0, new(big.Int).Mul(q, t1))
	}
	if r0.Cmp(big.NewInt(1)) != 0 {
		return nil, fmt.Errorf("no modular inverse: gcd(%s, mod) != 1", a.String())
	}
	return t0.Mod(t0, mod), nil
}

// EqualConstantTime compares a and b without leaking, through timing, how
// many leading words match. Both values are padded to the same width first.
func EqualConstantTime(a, b *big.Int) bool {
	if a.Sign() < 0 || b.Sign() < 0 {
		// sign is not secret material, a plain comparison is fine here
		return a.Cmp(b) == 0
	}
	size := len(a.Bytes())
	if l := len(b.Bytes()); l > size {
		size = l
	}
	if size == 0 {
		return true
	}
	abuf := make([]byte, size)
	bbuf := make([]byte, size)
	a.FillBytes(abuf)
	b.FillBytes(bbuf)
	return subtle.ConstantTimeCompare(abuf, bbuf) == 1
}
