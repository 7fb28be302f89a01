package ceremony

import (
	"fmt"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/trustcore/crypto/ecc/curves"
	"github.com/vocdoni/trustcore/types"
	"github.com/vocdoni/trustcore/util"
)

func TestShareDistribution(t *testing.T) {
	c := qt.New(t)
	const curveType = curves.CurveTypeBN254
	electionID := util.RandomBytes(32)

	cer, err := New(electionID, 2, 3, curveType)
	c.Assert(err, qt.IsNil)

	// trustees register with real curve keypairs
	keys := map[string]*big.Int{}
	for i := 0; i < 3; i++ {
		priv, pub, err := TrusteeKeyPair(curveType)
		c.Assert(err, qt.IsNil)
		trustee, err := cer.RegisterTrustee(fmt.Sprintf("trustee-%d", i), pub.Marshal())
		c.Assert(err, qt.IsNil)
		keys[trustee.ID] = priv
	}
	trustees := cer.Trustees()

	// one trustee deals shares of its polynomial to the whole committee
	poly, err := NewPolynomial(2, curveType)
	c.Assert(err, qt.IsNil)
	packets, err := DistributeShares(trustees[0].ID, poly, trustees, curveType)
	c.Assert(err, qt.IsNil)
	c.Assert(packets, qt.HasLen, 3)

	for i, packet := range packets {
		share, err := OpenSharePacket(packet, keys[trustees[i].ID], curveType)
		c.Assert(err, qt.IsNil)
		c.Assert(share.Cmp(poly.Share(trustees[i].ShareIndex)), qt.Equals, 0)
		c.Assert(cer.MarkShareReceived(trustees[i].ID), qt.IsNil)
	}
	for _, trustee := range cer.Trustees() {
		c.Assert(trustee.Status, qt.Equals, TrusteeStatusShareReceived)
	}

	// the wrong private key yields a share that fails verification
	_, err = OpenSharePacket(packets[0], keys[trustees[1].ID], curveType)
	c.Assert(err, qt.IsNotNil)

	// a tampered ciphertext fails verification too
	tampered := *packets[1]
	tampered.Ciphertext = (*types.BigInt)(new(big.Int).Add(packets[1].Ciphertext.MathBigInt(), big.NewInt(1)))
	_, err = OpenSharePacket(&tampered, keys[trustees[1].ID], curveType)
	c.Assert(err, qt.IsNotNil)

	c.Assert(cer.MarkShareReceived("nobody"), qt.ErrorIs, ErrUnknownTrustee)
}
