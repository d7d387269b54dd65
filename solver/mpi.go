package solver

import (
	"context"

	"mdp/mdp"
)

// SolveMPI runs Modified Policy Iteration over a nominal MDP (§4.5): each
// outer iteration does one greedy improvement from the current V, then up to
// NInner sweeps of fixed-policy Jacobi evaluation at tolerance EpsilonInner.
// Outer iteration stops when the outer residual (the change in V produced by
// the improvement step) is <= Epsilon, or after MaxIterations outer steps.
func SolveMPI(ctx context.Context, m *mdp.MDP, opts Options) (Solution, error) {
	if err := opts.validate(); err != nil {
		return Solution{}, err
	}
	n := m.StateCount()
	V := make([]float64, n)
	policy := make([]int, n)

	innerOpts := opts
	innerOpts.MaxIterations = opts.nInner()
	innerOpts.Epsilon = opts.epsilonInner()
	innerOpts.Progress = nil

	residual := 0.0
	outer := 0
	for ; outer < opts.maxIterations(); outer++ {
		// Greedy improvement from current V.
		newV := make([]float64, n)
		workers := 1
		if opts.Parallel {
			workers = opts.workers()
		}
		if err := parallelFor(ctx, n, workers, func(s int) error {
			v, bestA := backupNominal(m, s, V, opts.Gamma)
			newV[s] = v
			policy[s] = bestA
			return nil
		}); err != nil {
			return Solution{}, err
		}
		residual = residualOf(newV, V)
		V = newV

		if opts.Progress != nil {
			opts.Progress(outer+1, residual)
		}
		if stopEarly(residual, opts.Epsilon) {
			outer++
			break
		}

		// Partial policy evaluation of the improved policy.
		evalSol, err := EvaluatePolicyJacobi(ctx, m, policy, innerOpts)
		if err != nil {
			return Solution{}, err
		}
		V = evalSol.V
	}

	return Solution{V: V, Policy: policy, Residual: residual, Iterations: outer}, nil
}

// SolveMPIRobust is the RMDP analogue of SolveMPI: the inner evaluation uses
// each outer step's realized worst-case distributions as the fixed nature
// policy.
func SolveMPIRobust(ctx context.Context, m *mdp.RMDP, opts Options) (Solution, error) {
	if err := opts.validate(); err != nil {
		return Solution{}, err
	}
	n := m.StateCount()
	V := make([]float64, n)
	policy := make([]int, n)
	realized := make([][]float64, n)

	innerOpts := opts
	innerOpts.MaxIterations = opts.nInner()
	innerOpts.Epsilon = opts.epsilonInner()
	innerOpts.Progress = nil

	residual := 0.0
	outer := 0
	for ; outer < opts.maxIterations(); outer++ {
		newV := make([]float64, n)
		workers := 1
		if opts.Parallel {
			workers = opts.workers()
		}
		if err := parallelFor(ctx, n, workers, func(s int) error {
			v, bestA, p, err := backupRobust(m, s, V, opts.Gamma, opts.Mode)
			if err != nil {
				return err
			}
			newV[s] = v
			policy[s] = bestA
			realized[s] = p
			return nil
		}); err != nil {
			return Solution{}, err
		}
		residual = residualOf(newV, V)
		V = newV

		if opts.Progress != nil {
			opts.Progress(outer+1, residual)
		}
		if stopEarly(residual, opts.Epsilon) {
			outer++
			break
		}

		evalSol, err := EvaluatePolicyJacobiRobust(ctx, m, policy, realized, innerOpts)
		if err != nil {
			return Solution{}, err
		}
		V = evalSol.V
	}

	return Solution{V: V, Policy: policy, Residual: residual, Iterations: outer, Realized: realized}, nil
}
