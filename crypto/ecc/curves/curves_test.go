package curves

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestPointArithmetic(t *testing.T) {
	for _, curveType := range []string{CurveTypeBN254, CurveTypeBabyJubJub} {
		t.Run(curveType, func(t *testing.T) {
			c := qt.New(t)

			// 2G + 3G == 5G
			twoG := New(curveType)
			twoG.ScalarBaseMult(big.NewInt(2))
			threeG := New(curveType)
			threeG.ScalarBaseMult(big.NewInt(3))
			sum := New(curveType)
			sum.Add(twoG, threeG)

			fiveG := New(curveType)
			fiveG.ScalarBaseMult(big.NewInt(5))
			c.Assert(sum.Equal(fiveG), qt.IsTrue)

			// marshal round trip
			decoded := New(curveType)
			c.Assert(decoded.Unmarshal(fiveG.Marshal()), qt.IsNil)
			c.Assert(decoded.Equal(fiveG), qt.IsTrue)

			// JSON round trip
			data, err := fiveG.MarshalJSON()
			c.Assert(err, qt.IsNil)
			decoded2 := New(curveType)
			c.Assert(decoded2.UnmarshalJSON(data), qt.IsNil)
			c.Assert(decoded2.Equal(fiveG), qt.IsTrue)
		})
	}
}

func TestNewPanicsOnUnknownCurve(t *testing.T) {
	c := qt.New(t)
	c.Assert(func() { New("p256") }, qt.PanicMatches, "unsupported curve type: p256")
}
