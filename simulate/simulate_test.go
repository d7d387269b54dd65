package simulate

import (
	"context"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"mdp/mdp"
	"mdp/solver"
	"mdp/transition"
)

func twoStateToggleMDP() *mdp.MDP {
	m := mdp.New()
	m.AddTransition(0, 0, 0, 1.0, 1.0)
	m.AddTransition(1, 0, 1, 1.0, 0.0)
	m.AddTransition(0, 1, 1, 1.0, 0.0)
	m.AddTransition(1, 1, 0, 1.0, 0.0)
	return m
}

func TestSimulatorEmpiricalMeanConvergesToAnalyticReturn(t *testing.T) {
	Convey("Large-sample empirical mean return converges to the analytic V*", t, func() {
		m := twoStateToggleMDP()
		gamma := 0.9
		sol, err := solver.SolveGaussSeidel(m, solver.Options{Gamma: gamma, MaxIterations: 1000, Epsilon: 1e-10})
		So(err, ShouldBeNil)

		initial := transition.New()
		initial.Add(0, 1.0, 0)

		sim := New(m, initial, DeterministicPolicy{Actions: sol.Policy})
		result, err := sim.Run(context.Background(), Config{
			Runs:    20000,
			Horizon: 50,
			Gamma:   gamma,
			Seed:    7,
			Workers: 4,
		})
		So(err, ShouldBeNil)

		mean := 0.0
		for _, r := range result.Returns {
			mean += r
		}
		mean /= float64(len(result.Returns))

		// Large-sample statistical band; V*[0] is the analytic fixed point.
		So(math.Abs(mean-sol.V[0]), ShouldBeLessThan, 0.2)
	})
}

func TestSampledMDPConsistency(t *testing.T) {
	Convey("SampledMDP's estimate converges to the true transition probabilities", t, func() {
		m := mdp.New()
		m.AddTransition(0, 0, 0, 0.7, 1.0)
		m.AddTransition(0, 0, 1, 0.3, -1.0)
		m.EnsureState(1)

		initial := transition.New()
		initial.Add(0, 1.0, 0)

		sim := New(m, initial, RandomPolicy{})
		result, err := sim.Run(context.Background(), Config{
			Runs:    50000,
			Horizon: 1,
			Gamma:   1.0,
			Seed:    11,
			Workers: 4,
		})
		So(err, ShouldBeNil)

		est := NewSampledMDP()
		for _, smp := range result.Samples {
			So(est.AddSample(smp), ShouldBeNil)
		}
		estimated := est.GetMDP()

		act, err := estimated.Transition(0, 0)
		So(err, ShouldBeNil)
		So(act.T.ProbabilityAt(0), ShouldAlmostEqual, 0.7, 2e-2)
		So(act.T.ProbabilityAt(1), ShouldAlmostEqual, 0.3, 2e-2)
	})
}

func TestSamplesInitialDistribution(t *testing.T) {
	Convey("InitialDistribution normalizes observed starting-state counts", t, func() {
		samples := NewSamples()
		samples.Add(Sample{S: 0, Step: 0, Weight: 1})
		samples.Add(Sample{S: 0, Step: 0, Weight: 1})
		samples.Add(Sample{S: 1, Step: 0, Weight: 1})
		samples.Add(Sample{S: 0, Step: 1, Weight: 1}) // not an initial observation

		indices, probs := samples.InitialDistribution()
		total := 0.0
		for _, p := range probs {
			total += p
		}
		So(total, ShouldAlmostEqual, 1.0, 1e-9)
		So(len(indices), ShouldEqual, 2)
	})
}

func TestTranLimitHaltsEarly(t *testing.T) {
	Convey("A small TranLimit bounds the total number of recorded samples", t, func() {
		m := twoStateToggleMDP()
		initial := transition.New()
		initial.Add(0, 1.0, 0)

		sim := New(m, initial, DeterministicPolicy{Actions: []int{0, 1}})
		result, err := sim.Run(context.Background(), Config{
			Runs:      1000,
			Horizon:   100,
			Gamma:     0.9,
			Seed:      3,
			TranLimit: 10,
			Workers:   1,
		})
		So(err, ShouldBeNil)
		So(len(result.Samples), ShouldBeLessThanOrEqualTo, 10)
	})
}
