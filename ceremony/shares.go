package ceremony

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/vocdoni/trustcore/crypto/ecc"
	"github.com/vocdoni/trustcore/crypto/ecc/curves"
	"github.com/vocdoni/trustcore/types"
)

// Polynomial is a trustee's secret sharing polynomial. The constant term is
// the trustee's contribution to the joint secret; the published Feldman
// commitments bind every coefficient without revealing it. Shares are
// exchanged among trustees out of band, the coordinator never sees them.
type Polynomial struct {
	coeffs    []*big.Int
	curveType string
}

// NewPolynomial generates a random polynomial with the given number of
// coefficients over the scalar field of the curve.
func NewPolynomial(numCoeffs int, curveType string) (*Polynomial, error) {
	if numCoeffs < 1 {
		return nil, fmt.Errorf("polynomial needs at least one coefficient")
	}
	order := curves.New(curveType).Order()
	coeffs := make([]*big.Int, numCoeffs)
	for i := range coeffs {
		coeff, err := rand.Int(rand.Reader, order)
		if err != nil {
			return nil, fmt.Errorf("sample coefficient: %w", err)
		}
		coeffs[i] = coeff
	}
	return &Polynomial{coeffs: coeffs, curveType: curveType}, nil
}

// Commitments returns the Feldman commitment vector: G times each
// coefficient, in wire form.
func (p *Polynomial) Commitments() []Commitment {
	out := make([]Commitment, len(p.coeffs))
	for i, coeff := range p.coeffs {
		point := curves.New(p.curveType)
		point.ScalarBaseMult(coeff)
		x, y := point.Point()
		out[i] = Commitment{
			X: (*types.BigInt)(new(big.Int).Set(x)),
			Y: (*types.BigInt)(new(big.Int).Set(y)),
		}
	}
	return out
}

// Share evaluates the polynomial at the given share index.
func (p *Polynomial) Share(index int) *big.Int {
	order := curves.New(p.curveType).Order()
	x := big.NewInt(int64(index))
	result := big.NewInt(0)
	xPower := big.NewInt(1)
	for _, coeff := range p.coeffs {
		term := new(big.Int).Mul(coeff, xPower)
		term.Mod(term, order)
		result.Add(result, term)
		result.Mod(result, order)

		xPower.Mul(xPower, x)
		xPower.Mod(xPower, order)
	}
	return result
}

// Secret returns the constant term. Only used by tests to check the
// threshold recombination property.
func (p *Polynomial) Secret() *big.Int {
	return new(big.Int).Set(p.coeffs[0])
}

// VerifyShare checks a received share against the sender's published
// commitment vector: G*share must equal the commitment polynomial
// evaluated at the receiver's share index.
func VerifyShare(share *big.Int, index int, commitments []Commitment, curveType string) bool {
	if len(commitments) == 0 {
		return false
	}
	lhs := curves.New(curveType)
	lhs.ScalarBaseMult(share)

	rhs := curves.New(curveType)
	order := rhs.Order()
	x := big.NewInt(int64(index))
	xPower := big.NewInt(1)
	for _, cm := range commitments {
		if cm.X == nil || cm.Y == nil {
			return false
		}
		point := curves.New(curveType).SetPoint(cm.X.MathBigInt(), cm.Y.MathBigInt())
		term := curves.New(curveType)
		term.ScalarMult(point, xPower)
		rhs.Add(rhs, term)

		xPower.Mul(xPower, x)
		xPower.Mod(xPower, order)
	}
	return lhs.Equal(rhs)
}

// LagrangeCoefficients computes the Lagrange interpolation coefficients at
// zero for the given share indexes, modulo the group order. Any subset of
// threshold share indexes yields coefficients that recombine shares into
// the joint secret.
func LagrangeCoefficients(indexes []int, order *big.Int) (map[int]*big.Int, error) {
	coeffs := make(map[int]*big.Int, len(indexes))
	for _, i := range indexes {
		numerator := big.NewInt(1)
		denominator := big.NewInt(1)
		for _, j := range indexes {
			if i == j {
				continue
			}
			tempNum := big.NewInt(int64(-j))
			tempNum.Mod(tempNum, order)
			numerator.Mul(numerator, tempNum)
			numerator.Mod(numerator, order)

			tempDen := big.NewInt(int64(i - j))
			tempDen.Mod(tempDen, order)
			denominator.Mul(denominator, tempDen)
			denominator.Mod(denominator, order)
		}
		denominatorInv := new(big.Int).ModInverse(denominator, order)
		if denominatorInv == nil {
			return nil, fmt.Errorf("no modular inverse for denominator of index %d", i)
		}
		coeff := new(big.Int).Mul(numerator, denominatorInv)
		coeff.Mod(coeff, order)
		coeffs[i] = coeff
	}
	return coeffs, nil
}

// RecombineShares interpolates a set of index/share pairs at zero. With
// shares of the aggregate polynomial from at least threshold trustees it
// yields the joint secret. It exists to make the threshold property
// testable; production deployments never gather shares in one place.
func RecombineShares(shares map[int]*big.Int, curveType string) (*big.Int, error) {
	order := curves.New(curveType).Order()
	indexes := make([]int, 0, len(shares))
	for i := range shares {
		indexes = append(indexes, i)
	}
	lagrange, err := LagrangeCoefficients(indexes, order)
	if err != nil {
		return nil, err
	}
	secret := big.NewInt(0)
	for i, share := range shares {
		term := new(big.Int).Mul(share, lagrange[i])
		secret.Add(secret, term)
		secret.Mod(secret, order)
	}
	return secret, nil
}

// JointKeyFromSecret returns G times the secret. Used in tests to check a
// recombined secret against a ceremony's joint public key.
func JointKeyFromSecret(secret *big.Int, curveType string) ecc.Point {
	key := curves.New(curveType)
	key.ScalarBaseMult(secret)
	return key
}
