package transition

import (
	"math"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAddAndMerge(t *testing.T) {
	Convey("Given an empty transition", t, func() {
		tr := New()

		Convey("Adding a single entry stores it", func() {
			err := tr.Add(3, 0.5, 1.0)
			So(err, ShouldBeNil)
			So(tr.Size(), ShouldEqual, 1)
			So(tr.ProbabilityAt(3), ShouldEqual, 0.5)
			So(tr.RewardAt(3), ShouldEqual, 1.0)
		})

		Convey("Adding a negative probability is rejected", func() {
			err := tr.Add(0, -0.1, 0)
			So(err, ShouldNotBeNil)
		})

		Convey("Adding the same next-state twice merges probability and averages reward", func() {
			So(tr.Add(5, 0.25, 2.0), ShouldBeNil)
			So(tr.Add(5, 0.75, 10.0), ShouldBeNil)

			So(tr.Size(), ShouldEqual, 1)
			So(tr.ProbabilityAt(5), ShouldEqual, 1.0)
			// (0.25*2 + 0.75*10) / 1.0 = 8.0
			So(tr.RewardAt(5), ShouldAlmostEqual, 8.0, 1e-12)
		})

		Convey("Insertion keeps indices ascending regardless of add order", func() {
			So(tr.Add(9, 0.1, 0), ShouldBeNil)
			So(tr.Add(1, 0.1, 0), ShouldBeNil)
			So(tr.Add(5, 0.1, 0), ShouldBeNil)

			idx := tr.Indices()
			for i := 1; i < len(idx); i++ {
				So(idx[i], ShouldBeGreaterThan, idx[i-1])
			}
		})
	})
}

func TestNormalized(t *testing.T) {
	Convey("An empty transition is normalized (sums to 0)", t, func() {
		tr := New()
		So(tr.Normalized(), ShouldBeTrue)
	})

	Convey("A transition summing to 1 is normalized", t, func() {
		tr := New()
		tr.Add(0, 0.4, 0)
		tr.Add(1, 0.6, 0)
		So(tr.Normalized(), ShouldBeTrue)
	})

	Convey("A transition summing to neither 0 nor 1 is not normalized", t, func() {
		tr := New()
		tr.Add(0, 0.4, 0)
		So(tr.Normalized(), ShouldBeFalse)
	})
}

func TestExpectedValue(t *testing.T) {
	Convey("Expected value weights reward plus discounted successor value", t, func() {
		tr := New()
		tr.Add(0, 0.5, 1.0)
		tr.Add(1, 0.5, 3.0)
		V := []float64{10.0, 20.0}
		gamma := 0.5

		got := tr.ExpectedValue(V, gamma)
		want := 0.5*(1.0+0.5*10.0) + 0.5*(3.0+0.5*20.0)
		So(got, ShouldAlmostEqual, want, 1e-12)
	})

	Convey("Zero-probability entries do not affect expected value regardless of reward", t, func() {
		tr := New()
		tr.Add(0, 1.0, 1.0)
		tr.Add(1, 0.0, 1000.0)
		V := []float64{0, 0}
		So(tr.ExpectedValue(V, 0.9), ShouldAlmostEqual, 1.0, 1e-12)
	})
}

func TestDense(t *testing.T) {
	tr := New()
	tr.Add(1, 0.25, 0)
	tr.Add(3, 0.75, 0)
	dense := tr.Dense(5)
	want := []float64{0, 0.25, 0, 0.75, 0}
	for i := range want {
		if math.Abs(dense[i]-want[i]) > 1e-12 {
			t.Fatalf("dense[%d] = %v, want %v", i, dense[i], want[i])
		}
	}
}

// TestMergeIsOrderInvariant is a randomized check of property 2 in §8: merging two
// additions to the same (s,a,s') entry yields probability p1+p2 and the probability
// weighted mean reward, regardless of the order the two Adds occur.
func TestMergeIsOrderInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		p1, p2 := rng.Float64(), rng.Float64()
		r1, r2 := rng.NormFloat64()*10, rng.NormFloat64()*10

		a := New()
		a.Add(0, p1, r1)
		a.Add(0, p2, r2)

		b := New()
		b.Add(0, p2, r2)
		b.Add(0, p1, r1)

		wantP := p1 + p2
		wantR := (p1*r1 + p2*r2) / wantP

		if math.Abs(a.ProbabilityAt(0)-wantP) > 1e-9 {
			t.Fatalf("trial %d: probability = %v, want %v", trial, a.ProbabilityAt(0), wantP)
		}
		if math.Abs(a.RewardAt(0)-wantR) > 1e-9 {
			t.Fatalf("trial %d: reward = %v, want %v", trial, a.RewardAt(0), wantR)
		}
		if math.Abs(a.ProbabilityAt(0)-b.ProbabilityAt(0)) > 1e-12 {
			t.Fatalf("trial %d: order dependence in probability", trial)
		}
	}
}
