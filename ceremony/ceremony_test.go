package ceremony

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/trustcore/crypto/ecc/curves"
	"github.com/vocdoni/trustcore/util"
)

const testCurve = curves.CurveTypeBN254

func newTestCeremony(t *testing.T, threshold, maxTrustees int) *Ceremony {
	t.Helper()
	c, err := New(util.RandomBytes(32), threshold, maxTrustees, testCurve)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func phaseRank(phase string) int {
	for i, p := range []string{"CREATED", "REGISTRATION", "COMMITMENT", "SHARE_DISTRIBUTION", "FINALIZED"} {
		if p == phase {
			return i
		}
	}
	return -1
}

func TestFullCeremony(t *testing.T) {
	c := qt.New(t)
	const (
		threshold    = 3
		participants = 5
	)
	cer := newTestCeremony(t, threshold, participants)

	lastRank := phaseRank(cer.Status().Phase)
	observePhase := func() {
		rank := phaseRank(cer.Status().Phase)
		c.Assert(rank >= lastRank, qt.IsTrue, qt.Commentf("phase regressed from %d to %d", lastRank, rank))
		lastRank = rank
	}

	// register the full committee
	trustees := make([]*Trustee, participants)
	for i := range trustees {
		var err error
		trustees[i], err = cer.RegisterTrustee(fmt.Sprintf("trustee-%d", i+1), util.RandomBytes(33))
		c.Assert(err, qt.IsNil)
		c.Assert(trustees[i].ShareIndex, qt.Equals, i+1)
		observePhase()
	}
	c.Assert(cer.Status().Phase, qt.Equals, "COMMITMENT")
	c.Assert(cer.Status().RegisteredCount, qt.Equals, participants)
	c.Assert(cer.Status().RequiredCount, qt.Equals, threshold)

	// each trustee prepares a polynomial with threshold-1 coefficients
	polys := make([]*Polynomial, participants)
	for i := range polys {
		var err error
		polys[i], err = NewPolynomial(threshold-1, testCurve)
		c.Assert(err, qt.IsNil)
	}

	// the first three commitments finalize the ceremony
	for i := 0; i < threshold; i++ {
		status, err := cer.SubmitCommitment(trustees[i].ID, util.RandomBytes(32), polys[i].Commitments())
		c.Assert(err, qt.IsNil)
		observePhase()
		if i < threshold-1 {
			c.Assert(status.Phase, qt.Equals, "COMMITMENT")
			c.Assert(status.JointKey, qt.HasLen, 0)
		} else {
			c.Assert(status.Phase, qt.Equals, "FINALIZED")
			c.Assert(len(status.JointKey) > 0, qt.IsTrue)
		}
	}

	// late commitments from the remaining trustees are rejected
	for i := threshold; i < participants; i++ {
		_, err := cer.SubmitCommitment(trustees[i].ID, util.RandomBytes(32), polys[i].Commitments())
		c.Assert(err, qt.ErrorIs, ErrCeremonyAlreadyFinalized)
	}

	// the joint key is the sum of the committed constant terms
	jointKey, err := cer.JointPublicKey()
	c.Assert(err, qt.IsNil)
	expected := curves.New(testCurve)
	for i := 0; i < threshold; i++ {
		contrib := curves.New(testCurve)
		contrib.ScalarBaseMult(polys[i].Secret())
		expected.Add(expected, contrib)
	}
	c.Assert(jointKey.Equal(expected), qt.IsTrue)
}

func TestRegistrationErrors(t *testing.T) {
	c := qt.New(t)
	cer := newTestCeremony(t, 2, 2)

	key := util.RandomBytes(33)
	_, err := cer.RegisterTrustee("alpha", key)
	c.Assert(err, qt.IsNil)

	_, err = cer.RegisterTrustee("alpha again", key)
	c.Assert(err, qt.ErrorIs, ErrDuplicateRegistration)

	_, err = cer.RegisterTrustee("beta", util.RandomBytes(33))
	c.Assert(err, qt.IsNil)

	// committee complete, registration closed
	_, err = cer.RegisterTrustee("gamma", util.RandomBytes(33))
	c.Assert(err, qt.ErrorIs, ErrCeremonyClosed)
}

func TestCommitmentShapeValidation(t *testing.T) {
	c := qt.New(t)
	cer := newTestCeremony(t, 3, 3)

	var trustees []*Trustee
	for i := 0; i < 3; i++ {
		tr, err := cer.RegisterTrustee(fmt.Sprintf("t%d", i), util.RandomBytes(33))
		c.Assert(err, qt.IsNil)
		trustees = append(trustees, tr)
	}

	poly, err := NewPolynomial(2, testCurve)
	c.Assert(err, qt.IsNil)

	// empty vector
	_, err = cer.SubmitCommitment(trustees[0].ID, util.RandomBytes(32), nil)
	c.Assert(err, qt.ErrorIs, ErrInvalidCommitmentShape)

	// wrong length
	_, err = cer.SubmitCommitment(trustees[0].ID, util.RandomBytes(32), poly.Commitments()[:1])
	c.Assert(err, qt.ErrorIs, ErrInvalidCommitmentShape)

	// missing coordinates
	broken := poly.Commitments()
	broken[1].Y = nil
	_, err = cer.SubmitCommitment(trustees[0].ID, util.RandomBytes(32), broken)
	c.Assert(err, qt.ErrorIs, ErrInvalidCommitmentShape)

	// unknown trustee
	_, err = cer.SubmitCommitment("nobody", util.RandomBytes(32), poly.Commitments())
	c.Assert(err, qt.ErrorIs, ErrUnknownTrustee)
}

func TestCommitmentResubmissionOverwrites(t *testing.T) {
	c := qt.New(t)
	cer := newTestCeremony(t, 3, 3)

	var trustees []*Trustee
	for i := 0; i < 3; i++ {
		tr, err := cer.RegisterTrustee(fmt.Sprintf("t%d", i), util.RandomBytes(33))
		c.Assert(err, qt.IsNil)
		trustees = append(trustees, tr)
	}

	p1, err := NewPolynomial(2, testCurve)
	c.Assert(err, qt.IsNil)
	p2, err := NewPolynomial(2, testCurve)
	c.Assert(err, qt.IsNil)

	status, err := cer.SubmitCommitment(trustees[0].ID, util.RandomBytes(32), p1.Commitments())
	c.Assert(err, qt.IsNil)
	c.Assert(status.CommittedCount, qt.Equals, 1)

	// resubmission before finalization replaces, not duplicates
	status, err = cer.SubmitCommitment(trustees[0].ID, util.RandomBytes(32), p2.Commitments())
	c.Assert(err, qt.IsNil)
	c.Assert(status.CommittedCount, qt.Equals, 1)
}

func TestCommitmentBeforeCommitmentPhase(t *testing.T) {
	c := qt.New(t)
	cer := newTestCeremony(t, 2, 3)

	tr, err := cer.RegisterTrustee("early", util.RandomBytes(33))
	c.Assert(err, qt.IsNil)

	poly, err := NewPolynomial(1, testCurve)
	c.Assert(err, qt.IsNil)
	_, err = cer.SubmitCommitment(tr.ID, util.RandomBytes(32), poly.Commitments())
	c.Assert(err, qt.ErrorIs, ErrNotInCommitmentPhase)
}

func TestStateRoundTrip(t *testing.T) {
	c := qt.New(t)
	cer := newTestCeremony(t, 2, 2)

	tr1, err := cer.RegisterTrustee("a", util.RandomBytes(33))
	c.Assert(err, qt.IsNil)
	tr2, err := cer.RegisterTrustee("b", util.RandomBytes(33))
	c.Assert(err, qt.IsNil)

	p1, err := NewPolynomial(1, testCurve)
	c.Assert(err, qt.IsNil)
	p2, err := NewPolynomial(1, testCurve)
	c.Assert(err, qt.IsNil)

	_, err = cer.SubmitCommitment(tr1.ID, util.RandomBytes(32), p1.Commitments())
	c.Assert(err, qt.IsNil)
	status, err := cer.SubmitCommitment(tr2.ID, util.RandomBytes(32), p2.Commitments())
	c.Assert(err, qt.IsNil)
	c.Assert(status.Phase, qt.Equals, "FINALIZED")

	restored, err := Restore(cer.State())
	c.Assert(err, qt.IsNil)
	c.Assert(restored.Status(), qt.DeepEquals, cer.Status())

	key, err := cer.JointPublicKey()
	c.Assert(err, qt.IsNil)
	restoredKey, err := restored.JointPublicKey()
	c.Assert(err, qt.IsNil)
	c.Assert(restoredKey.Equal(key), qt.IsTrue)
}
