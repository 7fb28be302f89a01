// Package curves instantiates ecc.Point implementations by type name.
package curves

import (
	"fmt"

	"github.com/vocdoni/trustcore/crypto/ecc"
	"github.com/vocdoni/trustcore/crypto/ecc/bjj"
	"github.com/vocdoni/trustcore/crypto/ecc/bn254"
)

const (
	CurveTypeBN254      = bn254.CurveType
	CurveTypeBabyJubJub = bjj.CurveType
)

// New returns a fresh identity point of the given curve type. It panics on
// an unknown type, curve types are compile-time constants.
func New(curveType string) ecc.Point {
	switch curveType {
	case CurveTypeBN254:
		return bn254.New()
	case CurveTypeBabyJubJub:
		return bjj.New()
	default:
		panic(fmt.Sprintf("unsupported curve type: %s", curveType))
	}
}
