package mdp

import "mdp/mdperrors"

// DefaultIgnoreThreshold is the default sparsity filter for dense-matrix ingestion
// (§6's configuration parameters).
const DefaultIgnoreThreshold = 1e-10

// FromMatrices builds an MDP from a dense transition tensor T[s][s'][a] (probability
// of s->s' under action a) and a dense reward matrix R[s][a], discarding any
// T[s][s'][a] <= ignoreThreshold (the sparsity filter). T must be cubic in its first
// two dimensions (|S|x|S|) and every T[s] row must carry the same action count, equal
// to len(R[s]) for every s.
func FromMatrices(T [][][]float64, R [][]float64, ignoreThreshold float64) (*MDP, error) {
	nStates := len(T)
	if len(R) != nStates {
		return nil, mdperrors.ErrShapeMismatch
	}

	m := New()
	for s := 0; s < nStates; s++ {
		if len(T[s]) != nStates {
			return nil, mdperrors.ErrShapeMismatch
		}
		nActions := len(R[s])
		for sp := 0; sp < nStates; sp++ {
			if len(T[s][sp]) != nActions {
				return nil, mdperrors.ErrShapeMismatch
			}
		}
		for a := 0; a < nActions; a++ {
			for sp := 0; sp < nStates; sp++ {
				p := T[s][sp][a]
				if p < 0 {
					return nil, mdperrors.ErrInvalidParameter
				}
				if p > ignoreThreshold {
					if err := m.AddTransition(s, a, int64(sp), p, R[s][a]); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return m, nil
}

// ToMatrices requires a uniform action count across every state (mdperrors.ErrUnsupported
// otherwise) and returns the dense (T, R) pair with R[s][a] = sum_s' T[s][s'][a]*r(s,a,s').
func (m *MDP) ToMatrices() (T [][][]float64, R [][]float64, err error) {
	nStates := len(m.States)
	nActions := -1
	for _, st := range m.States {
		if nActions == -1 {
			nActions = len(st.Actions)
		} else if len(st.Actions) != nActions {
			return nil, nil, mdperrors.ErrUnsupported
		}
	}
	if nActions < 0 {
		nActions = 0
	}

	T = make([][][]float64, nStates)
	for s := range T {
		T[s] = make([][]float64, nStates)
		for sp := range T[s] {
			T[s][sp] = make([]float64, nActions)
		}
	}
	R = make([][]float64, nStates)
	for s := range R {
		R[s] = make([]float64, nActions)
	}

	for s, st := range m.States {
		for a, act := range st.Actions {
			tr := act.T
			idx := tr.Indices()
			probs := tr.Probabilities()
			rewards := tr.Rewards()
			for i, sp := range idx {
				T[s][sp][a] = probs[i]
				R[s][a] += probs[i] * rewards[i]
			}
		}
	}
	return T, R, nil
}

// FromMatricesRobust builds an RMDP from a dense tensor T[s][s'][k] and reward matrix
// R[s][a], where actions[k]/outcomes[k] select which (action, outcome) slot the k-th
// T-slice populates. Each (action, outcome) pair must be unique across k (the
// specification's adopted stricter rule, §9 open question (a): the looser "last write
// wins" behavior is rejected as an ErrInvalidParameter rather than silently accepted).
// The outcome's reward is taken from R[s][actions[k]]. Base distributions default to
// uniform over each action's outcomes and must be set explicitly afterward via
// RMDP.SetBaseDistribution if a non-uniform nominal is required.
func FromMatricesRobust(T [][][]float64, R [][]float64, actions, outcomes []int, ignoreThreshold float64) (*RMDP, error) {
	if len(actions) != len(outcomes) {
		return nil, mdperrors.ErrShapeMismatch
	}
	nStates := len(T)
	if len(R) != nStates {
		return nil, mdperrors.ErrShapeMismatch
	}
	K := len(actions)

	seen := make(map[[2]int]bool, K)
	for k := 0; k < K; k++ {
		key := [2]int{actions[k], outcomes[k]}
		if seen[key] {
			return nil, mdperrors.ErrInvalidParameter
		}
		seen[key] = true
	}

	m := NewRobust()
	for s := 0; s < nStates; s++ {
		if len(T[s]) != nStates {
			return nil, mdperrors.ErrShapeMismatch
		}
		for k := 0; k < K; k++ {
			a, o := actions[k], outcomes[k]
			if a < 0 || a >= len(R[s]) {
				return nil, mdperrors.ErrOutOfRange
			}
			reward := R[s][a]
			for sp := 0; sp < nStates; sp++ {
				if len(T[s][sp]) != K {
					return nil, mdperrors.ErrShapeMismatch
				}
				p := T[s][sp][k]
				if p < 0 {
					return nil, mdperrors.ErrInvalidParameter
				}
				if p > ignoreThreshold {
					if err := m.AddTransition(s, a, o, int64(sp), p, reward); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	// Default each action's base distribution to uniform over its outcomes.
	for _, st := range m.States {
		for _, act := range st.Actions {
			n := len(act.Outcomes)
			if n == 0 {
				continue
			}
			act.Q = make([]float64, n)
			for i := range act.Q {
				act.Q[i] = 1.0 / float64(n)
			}
		}
	}

	return m, nil
}

// ToMatrices requires a uniform action count across every state and returns the dense
// (T, R) pair using each action's Average-mode (base-distribution-weighted) transition
// as the effective nominal row, mirroring MDP.ToMatrices' semantics for the
// non-robust case.
func (m *RMDP) ToMatrices() (T [][][]float64, R [][]float64, err error) {
	nStates := len(m.States)
	nActions := -1
	for _, st := range m.States {
		if nActions == -1 {
			nActions = len(st.Actions)
		} else if len(st.Actions) != nActions {
			return nil, nil, mdperrors.ErrUnsupported
		}
	}
	if nActions < 0 {
		nActions = 0
	}

	T = make([][][]float64, nStates)
	for s := range T {
		T[s] = make([][]float64, nStates)
		for sp := range T[s] {
			T[s][sp] = make([]float64, nActions)
		}
	}
	R = make([][]float64, nStates)
	for s := range R {
		R[s] = make([]float64, nActions)
	}

	for s, st := range m.States {
		for a, act := range st.Actions {
			for oi, outcome := range act.Outcomes {
				q := 0.0
				if oi < len(act.Q) {
					q = act.Q[oi]
				}
				idx := outcome.Indices()
				probs := outcome.Probabilities()
				rewards := outcome.Rewards()
				for i, sp := range idx {
					T[s][sp][a] += q * probs[i]
					R[s][a] += q * probs[i] * rewards[i]
				}
			}
		}
	}
	return T, R, nil
}
