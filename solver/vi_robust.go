package solver

import (
	"context"

	"mdp/action"
	"mdp/mdp"
	"mdp/mdperrors"
)

// SolveGaussSeidelRobust runs value iteration over an RMDP under the given
// uncertainty mode, sequentially in ascending state-id order.
func SolveGaussSeidelRobust(m *mdp.RMDP, opts Options) (Solution, error) {
	if err := opts.validate(); err != nil {
		return Solution{}, err
	}
	if !opts.Mode.Valid() {
		return Solution{}, mdperrors.ErrInvalidParameter
	}
	n := m.StateCount()
	V := make([]float64, n)
	policy := make([]int, n)
	realized := make([][]float64, n)

	residual := 0.0
	iter := 0
	for ; iter < opts.maxIterations(); iter++ {
		residual = 0.0
		for s := 0; s < n; s++ {
			newV, bestA, p, err := backupRobust(m, s, V, opts.Gamma, opts.Mode)
			if err != nil {
				return Solution{}, err
			}
			d := newV - V[s]
			if d < 0 {
				d = -d
			}
			if d > residual {
				residual = d
			}
			V[s] = newV
			policy[s] = bestA
			realized[s] = p
		}
		if opts.Progress != nil {
			opts.Progress(iter+1, residual)
		}
		if stopEarly(residual, opts.Epsilon) {
			iter++
			break
		}
	}

	return Solution{V: V, Policy: policy, Residual: residual, Iterations: iter, Realized: realized}, nil
}

// SolveJacobiRobust is the RMDP analogue of SolveJacobi.
func SolveJacobiRobust(ctx context.Context, m *mdp.RMDP, opts Options) (Solution, error) {
	if err := opts.validate(); err != nil {
		return Solution{}, err
	}
	if !opts.Mode.Valid() {
		return Solution{}, mdperrors.ErrInvalidParameter
	}
	n := m.StateCount()
	Vprev := make([]float64, n)
	Vnext := make([]float64, n)
	policy := make([]int, n)
	realized := make([][]float64, n)

	residual := 0.0
	iter := 0
	for ; iter < opts.maxIterations(); iter++ {
		box := newMaxResidualBox()
		workers := 1
		if opts.Parallel {
			workers = opts.workers()
		}
		err := parallelFor(ctx, n, workers, func(s int) error {
			newV, bestA, p, e := backupRobust(m, s, Vprev, opts.Gamma, opts.Mode)
			if e != nil {
				return e
			}
			d := newV - Vprev[s]
			if d < 0 {
				d = -d
			}
			box.UpdateMax(d)
			Vnext[s] = newV
			policy[s] = bestA
			realized[s] = p
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

	return Solution{V: Vprev, Policy: policy, Residual: residual, Iterations: iter, Realized: realized}, nil
}

// EvaluatePolicyJacobiRobust performs fixed-policy evaluation on an RMDP given
// both a decision policy (action per state) and a nature policy (realized
// worst-case distribution per state, §4.5). A nil entry in nature falls back
// to the action's own base distribution (Average mode) for that state.
func EvaluatePolicyJacobiRobust(ctx context.Context, m *mdp.RMDP, policy []int, nature [][]float64, opts Options) (Solution, error) {
	if err := opts.validate(); err != nil {
		return Solution{}, err
	}
	n := m.StateCount()
	if len(policy) != n || len(nature) != n {
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
				act := st.Actions[a]
				p := nature[s]
				if p == nil {
					p = act.Q
				}
				newV = evaluateUnderDistribution(act, p, Vprev, opts.Gamma)
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

	return Solution{V: Vprev, Policy: append([]int(nil), policy...), Residual: residual, Iterations: iter, Realized: append([][]float64(nil), nature...)}, nil
}

// evaluateUnderDistribution computes sum_i p[i] * outcome_i.ExpectedValue(V, gamma)
// for an L1OutcomeAction, used to evaluate fixed nature policies without going
// through the worst-case optimizer.
func evaluateUnderDistribution(act *action.L1OutcomeAction, p []float64, V []float64, gamma float64) float64 {
	total := 0.0
	for i, outcome := range act.Outcomes {
		if i >= len(p) {
			break
		}
		total += p[i] * outcome.ExpectedValue(V, gamma)
	}
	return total
}
