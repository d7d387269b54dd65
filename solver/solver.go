// Package solver implements the Bellman-style iterative solvers of §4.5: value
// iteration (Gauss-Seidel and Jacobi), fixed-policy evaluation, and Modified
// Policy Iteration, over both nominal MDPs and L1-robust RMDPs. Jacobi-family
// solvers may partition their per-state backups across goroutines via
// golang.org/x/sync/errgroup (grounded on server/fastview/client.go's
// errgroup.WithContext fan-out); Gauss-Seidel is strictly sequential by
// definition and never parallelizes.
package solver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"mdp/action"
	"mdp/internal/atomicfloat"
	"mdp/mdp"
	"mdp/mdperrors"
)

// DefaultMaxIterations is the solver iteration cap (§6).
const DefaultMaxIterations = 500

// Options configures a solve. Zero value uses the package defaults: Gamma 0,
// MaxIterations DefaultMaxIterations, Epsilon 0 (no early stop), Average mode,
// sequential sweeps.
type Options struct {
	// Gamma is the discount factor, must lie in [0,1].
	Gamma float64
	// MaxIterations caps the number of sweeps. <= 0 uses DefaultMaxIterations.
	MaxIterations int
	// Epsilon is the residual tolerance for early stop. A negative Epsilon means
	// "never stop early" (run exactly MaxIterations sweeps); zero also disables
	// early stopping under the same rule.
	Epsilon float64
	// Mode selects the uncertainty mode used to evaluate robust actions. Ignored
	// for nominal (non-robust) solves.
	Mode action.Mode
	// Parallel enables per-state work partitioning across goroutines for
	// Jacobi-family sweeps. No effect on Gauss-Seidel.
	Parallel bool
	// Workers bounds the goroutine count when Parallel is set. <= 0 defaults to 1,
	// which runs the sweep sequentially on the calling goroutine.
	Workers int
	// NInner bounds MPI's inner fixed-policy sweep count. <= 0 defaults to
	// MaxIterations.
	NInner int
	// EpsilonInner is MPI's inner tolerance. <= 0 defaults to Epsilon/2.
	EpsilonInner float64
	// Progress, if non-nil, is invoked synchronously after each outer iteration
	// (MPI) or sweep (VI), receiving the iteration index and current residual.
	Progress func(iteration int, residual float64)
}

func (o Options) maxIterations() int {
	if o.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return o.MaxIterations
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return 1
	}
	return o.Workers
}

func (o Options) nInner() int {
	if o.NInner <= 0 {
		return o.maxIterations()
	}
	return o.NInner
}

func (o Options) epsilonInner() float64 {
	if o.EpsilonInner > 0 {
		return o.EpsilonInner
	}
	return o.Epsilon / 2
}

func (o Options) validate() error {
	if o.Gamma < 0 || o.Gamma > 1 {
		return mdperrors.ErrInvalidParameter
	}
	return nil
}

// stopEarly reports whether residual satisfies the early-stop rule for epsilon.
// A negative or zero epsilon disables early stopping (§4.5: "a negative epsilon
// means never stop early"; zero is treated the same way, so a residual of exactly
// 0 does not stop a solve whose epsilon is 0).
func stopEarly(residual, epsilon float64) bool {
	if epsilon <= 0 {
		return false
	}
	return residual <= epsilon
}

// Solution is a solver's output: the value function, the greedy policy (-1 at
// terminal states), the final residual, the iteration count, and — for robust
// solves — the realized worst-case distribution per state's chosen action.
type Solution struct {
	V         []float64
	Policy    []int
	Residual  float64
	Iterations int
	// Realized holds, for robust/optimistic solves, the outcome distribution
	// realized by the chosen action at each state. Nil for nominal solves.
	Realized [][]float64
}

// backupNominal computes the greedy Bellman backup at state s of a nominal MDP
// (§4.4): V'[s] = max_a Q(s,a), ties broken by lowest action id. Terminal
// states (no actions) get V'[s] = 0, policy -1.
func backupNominal(m *mdp.MDP, s int, V []float64, gamma float64) (newV float64, bestA int) {
	st := m.States[s]
	if len(st.Actions) == 0 {
		return 0, -1
	}
	bestA = 0
	best := st.Actions[0].ExpectedValue(V, gamma)
	for a := 1; a < len(st.Actions); a++ {
		v := st.Actions[a].ExpectedValue(V, gamma)
		if v > best {
			best = v
			bestA = a
		}
	}
	return best, bestA
}

// backupRobust computes the greedy backup at state s of an RMDP under mode,
// returning the realized distribution of the chosen action.
func backupRobust(m *mdp.RMDP, s int, V []float64, gamma float64, mode action.Mode) (newV float64, bestA int, realized []float64, err error) {
	st := m.States[s]
	if len(st.Actions) == 0 {
		return 0, -1, nil, nil
	}
	bestA = -1
	var bestRealized []float64
	best := 0.0
	for a, act := range st.Actions {
		v, p, e := act.ExpectedValue(V, gamma, mode)
		if e != nil {
			return 0, -1, nil, e
		}
		if bestA == -1 || v > best {
			best = v
			bestA = a
			bestRealized = p
		}
	}
	return best, bestA, bestRealized, nil
}

// residualOf returns the L∞ norm of the elementwise difference of a, b.
func residualOf(a, b []float64) float64 {
	r := 0.0
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d > r {
			r = d
		}
	}
	return r
}

// parallelFor runs fn(s) for s in [0,n) across up to `workers` goroutines via
// errgroup (or in a plain loop when workers <= 1), partitioning the index range into contiguous chunks. Each
// invocation of fn is expected to only write to index s of its own output
// buffer(s), so there is no inter-state dependency within the call (§5).
func parallelFor(ctx context.Context, n int, workers int, fn func(s int) error) error {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for s := 0; s < n; s++ {
			if err := fn(s); err != nil {
				return err
			}
		}
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		lo, hi := lo, hi
		g.Go(func() error {
			for s := lo; s < hi; s++ {
				if err := fn(s); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// newMaxResidualBox returns a zeroed atomicfloat.Float64 used to fold
// per-worker local maxima into one running residual during parallel sweeps.
func newMaxResidualBox() *atomicfloat.Float64 {
	return atomicfloat.New(0)
}
