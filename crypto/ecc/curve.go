// Package ecc defines a minimal elliptic curve point abstraction so the
// ceremony code can work over different curve implementations.
package ecc

import "math/big"

// Point is a point on an elliptic curve group. Implementations are mutable,
// operations store their result in the receiver.
type Point interface {
	// New returns a fresh point of the same curve, set to the identity.
	New() Point
	// Order returns the order of the group generator.
	Order() *big.Int

	// Add sets the receiver to a + b.
	Add(a, b Point)
	// SafeAdd is Add protected by an internal lock, for concurrent
	// accumulation into a shared point.
	SafeAdd(a, b Point)
	// ScalarMult sets the receiver to scalar * a.
	ScalarMult(a Point, scalar *big.Int)
	// ScalarBaseMult sets the receiver to scalar * G.
	ScalarBaseMult(scalar *big.Int)
	// Neg sets the receiver to -a.
	Neg(a Point)

	// Equal reports whether the receiver and a are the same point.
	Equal(a Point) bool
	// Set copies a into the receiver.
	Set(a Point)
	// SetZero sets the receiver to the identity element.
	SetZero()
	// SetGenerator sets the receiver to the group generator.
	SetGenerator()
	// Point returns the affine coordinates of the receiver.
	Point() (x, y *big.Int)
	// SetPoint returns a new point with the given affine coordinates.
	SetPoint(x, y *big.Int) Point

	// Marshal and Unmarshal convert to and from the compressed byte form.
	Marshal() []byte
	Unmarshal(buf []byte) error

	MarshalJSON() ([]byte, error)
	UnmarshalJSON(buf []byte) error
	MarshalCBOR() ([]byte, error)
	UnmarshalCBOR(buf []byte) error

	// String returns a printable representation of the point.
	String() string
	// Type returns the curve type identifier.
	Type() string
}
