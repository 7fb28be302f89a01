package modular

import (
	"crypto/rand"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestExp(t *testing.T) {
	c := qt.New(t)

	r, err := Exp(big.NewInt(4), big.NewInt(13), big.NewInt(497))
	c.Assert(err, qt.IsNil)
	c.Assert(r.Int64(), qt.Equals, int64(445))

	_, err = Exp(big.NewInt(4), big.NewInt(13), big.NewInt(0))
	c.Assert(err, qt.IsNotNil)
}

func TestInverse(t *testing.T) {
	c := qt.New(t)

	mod, err := rand.Prime(rand.Reader, 256)
	c.Assert(err, qt.IsNil)

	for i := 0; i < 50; i++ {
		a, err := rand.Int(rand.Reader, mod)
		c.Assert(err, qt.IsNil)
		if a.Sign() == 0 {
			continue
		}
		inv, err := Inverse(a, mod)
		c.Assert(err, qt.IsNil)

		prod := new(big.Int).Mul(a, inv)
		prod.Mod(prod, mod)
		c.Assert(prod.Cmp(big.NewInt(1)), qt.Equals, 0)

		// cross check against the stdlib
		c.Assert(inv.Cmp(new(big.Int).ModInverse(a, mod)), qt.Equals, 0)
	}

	// 6 has no inverse mod 9
	_, err = Inverse(big.NewInt(6), big.NewInt(9))
	c.Assert(err, qt.IsNotNil)
}

func TestGCD(t *testing.T) {
	c := qt.New(t)
	c.Assert(GCD(big.NewInt(54), big.NewInt(24)).Int64(), qt.Equals, int64(6))
	c.Assert(GCD(big.NewInt(-54), big.NewInt(24)).Int64(), qt.Equals, int64(6))
	c.Assert(GCD(big.NewInt(17), big.NewInt(31)).Int64(), qt.Equals, int64(1))
}

func TestEqualConstantTime(t *testing.T) {
	c := qt.New(t)

	a, _ := new(big.Int).SetString("deadbeef00112233445566778899aabbcc", 16)
	b := new(big.Int).Set(a)
	c.Assert(EqualConstantTime(a, b), qt.IsTrue)

	b.Add(b, big.NewInt(1))
	c.Assert(EqualConstantTime(a, b), qt.IsFalse)

	// widths differ
	c.Assert(EqualConstantTime(a, big.NewInt(1)), qt.IsFalse)
	c.Assert(EqualConstantTime(big.NewInt(0), big.NewInt(0)), qt.IsTrue)
}
