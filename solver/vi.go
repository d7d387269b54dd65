package solver

import (
	"context"

	"mdp/mdp"
	"mdp/mdperrors"
)

// SolveGaussSeidel runs value iteration over a nominal MDP, updating V in place
// in ascending state-id order within each sweep (§4.5, §5): Gauss-Seidel
// convergence depends on this order, so it is never parallelized.
func SolveGaussSeidel(m *mdp.MDP, opts Options) (Solution, error) {
	if err := opts.validate(); err != nil {
		return Solution{}, err
	}
	n := m.StateCount()
	V := make([]float64, n)
	policy := make([]int, n)

	residual := 0.0
	iter := 0
	for ; iter < opts.maxIterations(); iter++ {
		residual = 0.0
		for s := 0; s < n; s++ {
			newV, bestA := backupNominal(m, s, V, opts.Gamma)
			d := newV - V[s]
			if d < 0 {
				d = -d
			}
			if d > residual {
				residual = d
			}
			V[s] = newV
			policy[s] = bestA
		}
		if opts.Progress != nil {
			opts.Progress(iter+1, residual)
		}
		if stopEarly(residual, opts.Epsilon) {
			iter++
			break
		}
	}

	return Solution{V: V, Policy: policy, Residual: residual, Iterations: iter}, nil
}

// SolveJacobi runs value iteration over a nominal MDP maintaining separate
// V_prev/V_next buffers so every state's backup reads only V_prev (§4.5):
// "safe for parallel evaluation over states." When opts.Parallel is set, the
// per-state backups are partitioned across opts.Workers goroutines.
func SolveJacobi(ctx context.Context, m *mdp.MDP, opts Options) (Solution, error) {
	if err := opts.validate(); err != nil {
		return Solution{}, err
	}
	n := m.StateCount()
	Vprev := make([]float64, n)
	Vnext := make([]float64, n)
	policy := make([]int, n)

	residual := 0.0
	iter := 0
	for ; iter < opts.maxIterations(); iter++ {
		box := newMaxResidualBox()
		workers := 1
		if opts.Parallel {
			workers = opts.workers()
		}
		err := parallelFor(ctx, n, workers, func(s int) error {
			newV, bestA := backupNominal(m, s, Vprev, opts.Gamma)
			d := newV - Vprev[s]
			if d < 0 {
				d = -d
			}
			box.UpdateMax(d)
			Vnext[s] = newV
			policy[s] = bestA
			return nil
		})
		if err != nil {
			return Solution{}, err
		}
		residual = box.Load()
		Vprev, Vnext = Vnext, Vprev

		if opts.Progress != nil {
			opts.Progress(iter+1, residual)
		}
		if stopEarly(residual, opts.Epsilon) {
			iter++
			break
		}
	}

	return Solution{V: Vprev, Policy: policy, Residual: residual, Iterations: iter}, nil
}

// EvaluatePolicyJacobi performs fixed-policy evaluation (§4.5): each sweep
// computes, for every state, the expected value of the single action given by
// policy[s] (no max). Terminal states and states with policy[s] == -1
// evaluate to 0.
func EvaluatePolicyJacobi(ctx context.Context, m *mdp.MDP, policy []int, opts Options) (Solution, error) {
	if err := opts.validate(); err != nil {
		return Solution{}, err
	}
	n := m.StateCount()
	if len(policy) != n {
		return Solution{}, mdperrors.ErrShapeMismatch
	}
	Vprev := make([]float64, n)
	Vnext := make([]float64, n)

	residual := 0.0
	iter := 0
	for ; iter < opts.maxIterations(); iter++ {
		box := newMaxResidualBox()
		workers := 1
		if opts.Parallel {
			workers = opts.workers()
		}
		err := parallelFor(ctx, n, workers, func(s int) error {
			a := policy[s]
			st := m.States[s]
			var newV float64
			if a < 0 || a >= len(st.Actions) {
				newV = 0
			} else {
				newV = st.Actions[a].ExpectedValue(Vprev, opts.Gamma)
			}
			d := newV - Vprev[s]
			if d < 0 {
				d = -d
			}
			box.UpdateMax(d)
			Vnext[s] = newV
			return nil
		})
		if err != nil {
			return Solution{}, err
		}
		residual = box.Load()
		Vprev, Vnext = Vnext, Vprev

		if stopEarly(residual, opts.Epsilon) {
			iter++
			break
		}
	}

	return Solution{V: Vprev, Policy: append([]int(nil), policy...), Residual: residual, Iterations: iter}, nil
}
