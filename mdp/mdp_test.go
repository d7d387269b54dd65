package mdp

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuilderAutoExtends(t *testing.T) {
	Convey("AddTransition auto-extends states and actions", t, func() {
		m := New()
		err := m.AddTransition(2, 1, 0, 0.5, 1.0)
		So(err, ShouldBeNil)
		So(m.StateCount(), ShouldEqual, 3)

		n, err := m.ActionCount(2)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 2)

		// Freshly extended slots are empty, not nil.
		So(m.States[0].Terminal(), ShouldBeTrue)
		So(m.States[1].Terminal(), ShouldBeTrue)
	})

	Convey("Reading before writing returns OutOfRange", t, func() {
		m := New()
		_, err := m.ActionCount(0)
		So(err, ShouldNotBeNil)
	})
}

func TestTwoStateToggleSeedScenario(t *testing.T) {
	// §8 seed scenario: S={0,1}, A={stay,flip}.
	// stay: deterministic self-loop r=1 at 0, r=0 at 1.
	// flip: deterministic swap r=0.
	m := New()
	So_NoErr(t, m.AddTransition(0, 0, 0, 1.0, 1.0)) // stay @ 0
	So_NoErr(t, m.AddTransition(1, 0, 1, 1.0, 0.0)) // stay @ 1
	So_NoErr(t, m.AddTransition(0, 1, 1, 1.0, 0.0)) // flip @ 0
	So_NoErr(t, m.AddTransition(1, 1, 0, 1.0, 0.0)) // flip @ 1

	n, err := m.ActionCount(0)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 actions at state 0, got %d (%v)", n, err)
	}
}

func So_NoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFromMatricesIgnoreThreshold(t *testing.T) {
	Convey("Entries at or below ignoreThreshold are dropped", t, func() {
		T := [][][]float64{
			{{1.0}, {1e-12}},
			{{0.0}, {1.0}},
		}
		R := [][]float64{{1.0}, {0.0}}

		m, err := FromMatrices(T, R, 1e-10)
		So(err, ShouldBeNil)

		act, err := m.Transition(0, 0)
		So(err, ShouldBeNil)
		So(act.T.Size(), ShouldEqual, 1)
		So(act.T.ProbabilityAt(0), ShouldAlmostEqual, 1.0, 1e-12)
	})
}

func TestFromMatricesShapeMismatch(t *testing.T) {
	Convey("Inconsistent dimensions are rejected", t, func() {
		T := [][][]float64{
			{{1.0}},
		}
		R := [][]float64{{1.0}, {1.0}} // length mismatch vs T
		_, err := FromMatrices(T, R, 1e-10)
		So(err, ShouldNotBeNil)
	})
}

func TestToMatricesRoundTrip(t *testing.T) {
	Convey("ToMatrices followed by FromMatrices reproduces the same transition probabilities", t, func() {
		m := New()
		So_NoErr(t, m.AddTransition(0, 0, 1, 0.5, 2.0))
		So_NoErr(t, m.AddTransition(0, 0, 0, 0.5, 4.0))
		So_NoErr(t, m.AddTransition(1, 0, 1, 1.0, 0.0))

		T, R, err := m.ToMatrices()
		So(err, ShouldBeNil)

		m2, err := FromMatrices(T, R, 1e-10)
		So(err, ShouldBeNil)

		act1, _ := m.Transition(0, 0)
		act2, _ := m2.Transition(0, 0)
		So(act2.T.ProbabilityAt(0), ShouldAlmostEqual, act1.T.ProbabilityAt(0), 1e-9)
		So(act2.T.ProbabilityAt(1), ShouldAlmostEqual, act1.T.ProbabilityAt(1), 1e-9)
	})
}

func TestToMatricesRejectsRaggedMDP(t *testing.T) {
	Convey("A ragged action count across states is unsupported", t, func() {
		m := New()
		So_NoErr(t, m.AddTransition(0, 0, 0, 1.0, 0))
		So_NoErr(t, m.AddTransition(0, 1, 0, 1.0, 0)) // state 0 has 2 actions
		So_NoErr(t, m.AddTransition(1, 0, 0, 1.0, 0)) // state 1 has 1 action

		_, _, err := m.ToMatrices()
		So(err, ShouldNotBeNil)
	})
}

func TestFromMatricesRobustRejectsDuplicatePairs(t *testing.T) {
	Convey("Non-unique (action, outcome) pairs are rejected, not silently merged", t, func() {
		T := [][][]float64{
			{{1.0, 1.0}},
		}
		R := [][]float64{{0.0}}
		actions := []int{0, 0}
		outcomes := []int{0, 0} // duplicate pair
		_, err := FromMatricesRobust(T, R, actions, outcomes, 1e-10)
		So(err, ShouldNotBeNil)
	})
}

func TestFromMatricesRobustBasic(t *testing.T) {
	Convey("Distinct (action, outcome) pairs populate distinct outcomes with a uniform base", t, func() {
		// One state, one action, two outcomes: outcome 0 stays at 0, outcome 1 moves to 1.
		T := [][][]float64{
			{{1.0, 0.0}, {0.0, 1.0}},
		}
		R := [][]float64{{5.0}}
		actions := []int{0, 0}
		outcomes := []int{0, 1}

		rm, err := FromMatricesRobust(T, R, actions, outcomes, 1e-10)
		So(err, ShouldBeNil)

		act, err := rm.Action(0, 0)
		So(err, ShouldBeNil)
		So(len(act.Outcomes), ShouldEqual, 2)
		So(act.Q[0], ShouldAlmostEqual, 0.5, 1e-12)
		So(act.Q[1], ShouldAlmostEqual, 0.5, 1e-12)
	})
}
