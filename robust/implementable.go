package robust

import (
	"context"

	"mdp/action"
	"mdp/mdp"
	"mdp/mdperrors"
	"mdp/solver"
	"mdp/transition"
)

// ObservationMap is an observation mapping phi: S -> O (§4.9), partitioning
// states into observation classes ("fibers").
type ObservationMap struct {
	ObsOf []int
	NObs  int
}

// NewObservationMap validates obsOf (every entry in [0,nObs)) and returns an
// ObservationMap.
func NewObservationMap(obsOf []int, nObs int) (*ObservationMap, error) {
	for _, o := range obsOf {
		if o < 0 || o >= nObs {
			return nil, mdperrors.ErrOutOfRange
		}
	}
	return &ObservationMap{ObsOf: append([]int(nil), obsOf...), NObs: nObs}, nil
}

// Classes returns the set of state ids belonging to each observation.
func (om *ObservationMap) Classes() [][]int {
	classes := make([][]int, om.NObs)
	for s, o := range om.ObsOf {
		classes[o] = append(classes[o], s)
	}
	return classes
}

// ObservationPolicy maps each observation to a single action id, admissible
// only if that action is available in every state of the observation's class.
type ObservationPolicy struct {
	Action []int
}

// Broadcast expands an observation policy into a per-state decision policy
// (§4.9's obs->state conversion): policy[s] = Action[phi(s)].
func (op *ObservationPolicy) Broadcast(om *ObservationMap) []int {
	policy := make([]int, len(om.ObsOf))
	for s, o := range om.ObsOf {
		policy[s] = op.Action[o]
	}
	return policy
}

// IsAdmissible reports whether every observation's chosen action is available
// (an in-range action id) in every state of that observation's class (§4.9).
func IsAdmissible(m *mdp.MDP, om *ObservationMap, op *ObservationPolicy) bool {
	classes := om.Classes()
	for o, states := range classes {
		a := op.Action[o]
		if a < 0 {
			continue
		}
		for _, s := range states {
			if a >= len(m.States[s].Actions) {
				return false
			}
		}
	}
	return true
}

// admissibleActionCount returns the number of actions available in every state
// of an observation class (the minimum action count across its member
// states), i.e. the count of actions addressable by index 0..count-1 in every
// member state.
func admissibleActionCount(m *mdp.MDP, states []int) int {
	count := -1
	for _, s := range states {
		n := len(m.States[s].Actions)
		if count == -1 || n < count {
			count = n
		}
	}
	if count == -1 {
		return 0
	}
	return count
}

// TotalReturn evaluates a (state-level) decision policy's total discounted
// return under the initial distribution, to 1e-8 precision (§4.9).
func TotalReturn(m *mdp.MDP, policy []int, initial *transition.Transition, gamma float64) (float64, error) {
	sol, err := solver.EvaluatePolicyJacobi(context.Background(), m, policy, solver.Options{
		Gamma:         gamma,
		MaxIterations: 100000,
		Epsilon:       1e-10,
	})
	if err != nil {
		return 0, err
	}
	total := 0.0
	idx := initial.Indices()
	probs := initial.Probabilities()
	for i, s := range idx {
		if int(s) < len(sol.V) {
			total += probs[i] * sol.V[s]
		}
	}
	return total, nil
}

// SolveReweighted implements the reweighted method of §4.9: alternate computing
// the discounted occupancy of the current state policy, then for each
// observation choosing the common action maximizing the occupancy-weighted
// sum of state-level Q-values.
func SolveReweighted(m *mdp.MDP, om *ObservationMap, initial *transition.Transition, gamma float64, iterations int) (*ObservationPolicy, error) {
	classes := om.Classes()
	op := &ObservationPolicy{Action: make([]int, om.NObs)}
	for o, states := range classes {
		if admissibleActionCount(m, states) == 0 {
			op.Action[o] = -1
		}
	}

	for iter := 0; iter < iterations; iter++ {
		statePolicy := op.Broadcast(om)
		evalSol, err := solver.EvaluatePolicyJacobi(context.Background(), m, statePolicy, solver.Options{
			Gamma:         gamma,
			MaxIterations: 1000,
			Epsilon:       1e-9,
		})
		if err != nil {
			return nil, err
		}
		occupancy := discountedOccupancy(m, statePolicy, initial, gamma, 1000)

		for o, states := range classes {
			nActions := admissibleActionCount(m, states)
			if nActions == 0 {
				continue
			}
			bestA, bestVal := -1, 0.0
			for a := 0; a < nActions; a++ {
				val := 0.0
				for _, s := range states {
					val += occupancy[s] * m.States[s].Actions[a].ExpectedValue(evalSol.V, gamma)
				}
				if bestA == -1 || val > bestVal {
					bestA, bestVal = a, val
				}
			}
			op.Action[o] = bestA
		}
	}

	return op, nil
}

// discountedOccupancy computes, via power iteration, the discounted state
// visitation distribution d(s) = (1-gamma) * sum_t gamma^t Pr(s_t = s) induced
// by following `policy` from `initial`.
func discountedOccupancy(m *mdp.MDP, policy []int, initial *transition.Transition, gamma float64, sweeps int) []float64 {
	n := m.StateCount()
	d := initial.Dense(n)
	acc := make([]float64, n)
	weight := 1.0
	for t := 0; t < sweeps; t++ {
		scale := (1 - gamma)
		if gamma >= 1 {
			scale = 1.0 / float64(sweeps)
		}
		for s := range acc {
			acc[s] += scale * weight * d[s]
		}
		next := make([]float64, n)
		for s, mass := range d {
			if mass == 0 {
				continue
			}
			a := policy[s]
			if a < 0 || a >= len(m.States[s].Actions) {
				continue
			}
			tr := m.States[s].Actions[a].T
			for i, sp := range tr.Indices() {
				next[sp] += mass * tr.Probabilities()[i]
			}
		}
		d = next
		weight *= gamma
		if weight < 1e-12 {
			break
		}
	}
	return acc
}

// AggregateToObservationSpace builds an RMDP whose states are observations
// (§4.9's robust method): for each admissible action a of observation o, one
// outcome per member state s of o holds s's nominal (s,a) transition mapped
// into observation space (next-state probabilities summed per observation),
// with a uniform base distribution over member states and L1 threshold tau.
// Solving this RMDP under mode Robust lets the adversary pick "the worst state
// of o for the chosen action" within the L1 ball.
func AggregateToObservationSpace(m *mdp.MDP, om *ObservationMap, tau float64) (*mdp.RMDP, error) {
	out := mdp.NewRobust()
	classes := om.Classes()

	for o, states := range classes {
		out.EnsureState(o)
		nActions := admissibleActionCount(m, states)
		for a := 0; a < nActions; a++ {
			q := make([]float64, len(states))
			for i, s := range states {
				tr := m.States[s].Actions[a].T
				obsTr := mapToObservationSpace(tr, om)
				for _, sp := range obsTr.Indices() {
					if err := out.AddTransition(o, a, i, sp, obsTr.ProbabilityAt(sp), obsTr.RewardAt(sp)); err != nil {
						return nil, err
					}
				}
				q[i] = 1.0 / float64(len(states))
			}
			if len(states) > 0 {
				if err := out.SetBaseDistribution(o, a, q); err != nil {
					return nil, err
				}
			}
			if err := out.SetThreshold(o, a, tau); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// mapToObservationSpace collapses a state-indexed transition into an
// observation-indexed one, summing probability mass and averaging reward over
// next states sharing an observation.
func mapToObservationSpace(tr *transition.Transition, om *ObservationMap) *transition.Transition {
	out := transition.New()
	indices := tr.Indices()
	probs := tr.Probabilities()
	rewards := tr.Rewards()
	for i, sp := range indices {
		o := int64(om.ObsOf[sp])
		out.Add(o, probs[i], rewards[i])
	}
	return out
}

// SolveRobust implements the robust method of §4.9: build the observation-
// space RMDP at threshold tau and solve it under mode Robust, yielding an
// observation policy directly (the robust MDP's states are observations, so
// its policy is already constant within each phi-fiber).
func SolveRobust(m *mdp.MDP, om *ObservationMap, tau float64, opts solver.Options) (*ObservationPolicy, error) {
	rm, err := AggregateToObservationSpace(m, om, tau)
	if err != nil {
		return nil, err
	}
	opts.Mode = action.Robust
	sol, err := solver.SolveGaussSeidelRobust(rm, opts)
	if err != nil {
		return nil, err
	}
	return &ObservationPolicy{Action: sol.Policy}, nil
}
