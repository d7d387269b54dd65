package action

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRegularActionExpectedValue(t *testing.T) {
	Convey("A regular action delegates to its nominal transition", t, func() {
		a := NewRegularAction()
		a.T.Add(0, 1.0, 2.0)
		V := []float64{10.0}
		got := a.ExpectedValue(V, 0.5)
		So(got, ShouldAlmostEqual, 2.0+0.5*10.0, 1e-12)
	})
}

func buildTwoOutcomeAction(t *testing.T) *L1OutcomeAction {
	a := NewL1OutcomeAction()
	a.EnsureOutcome(1)
	a.Outcomes[0].Add(0, 1.0, -1.0)
	a.Outcomes[1].Add(0, 1.0, 1.0)
	a.Q = []float64{0.5, 0.5}
	if err := a.SetThreshold(0.5); err != nil {
		t.Fatalf("SetThreshold: %v", err)
	}
	return a
}

func TestL1OutcomeActionModes(t *testing.T) {
	Convey("Average/Robust/Optimistic agree with the §8 seed scenario", t, func() {
		a := buildTwoOutcomeAction(t)
		V := []float64{0}

		avg, realizedAvg, err := a.ExpectedValue(V, 0.9, Average)
		So(err, ShouldBeNil)
		So(avg, ShouldAlmostEqual, 0.0, 1e-9)
		So(realizedAvg, ShouldResemble, a.Q)

		robust, _, err := a.ExpectedValue(V, 0.9, Robust)
		So(err, ShouldBeNil)
		So(robust, ShouldAlmostEqual, -0.5, 1e-9)

		optimistic, _, err := a.ExpectedValue(V, 0.9, Optimistic)
		So(err, ShouldBeNil)
		So(optimistic, ShouldAlmostEqual, 0.5, 1e-9)
	})

	Convey("An unknown mode is rejected", t, func() {
		a := buildTwoOutcomeAction(t)
		_, _, err := a.ExpectedValue([]float64{0}, 0.9, Mode(99))
		So(err, ShouldNotBeNil)
	})
}

func TestNormalizeBase(t *testing.T) {
	Convey("NormalizeBase scales Q to sum to 1", t, func() {
		a := NewL1OutcomeAction()
		a.EnsureOutcome(2)
		a.Q = []float64{1, 1, 2}
		err := a.NormalizeBase()
		So(err, ShouldBeNil)
		sum := 0.0
		for _, q := range a.Q {
			sum += q
		}
		So(sum, ShouldAlmostEqual, 1.0, 1e-12)
	})

	Convey("NormalizeBase rejects a non-positive total", t, func() {
		a := NewL1OutcomeAction()
		a.Q = []float64{0, 0}
		err := a.NormalizeBase()
		So(err, ShouldNotBeNil)
	})
}

func TestModeValidAndString(t *testing.T) {
	Convey("Valid modes report Valid() true and a readable name", t, func() {
		for _, m := range []Mode{Average, Robust, Optimistic} {
			So(m.Valid(), ShouldBeTrue)
			So(m.String(), ShouldNotEqual, "unknown")
		}
	})

	Convey("An out-of-range mode reports Valid() false", t, func() {
		So(Mode(42).Valid(), ShouldBeFalse)
	})
}
