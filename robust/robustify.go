// Package robust implements the nominal-to-L1-robust transform (§4.8) and the
// observation-constrained implementable MDP solver built on top of it (§4.9).
package robust

import (
	"mdp/mdp"
)

// Robustify builds an RMDP from a nominal MDP m (§4.8). When allowZeros is
// true, every action gets one outcome per state of m — even states outside
// the nominal transition's support, each a deterministic transition to that
// state carrying the nominal's reward for it (or 0 if unsupported) — so the
// adversary may shift probability to any state. When allowZeros is false,
// only the states in the nominal transition's support get an outcome. Every
// action's initial L1 threshold is 0 (pure nominal); raise it with
// RMDP.SetThreshold / SetAllThresholds.
func Robustify(m *mdp.MDP, allowZeros bool) (*mdp.RMDP, error) {
	out := mdp.NewRobust()
	nStates := m.StateCount()

	for s, st := range m.States {
		out.EnsureState(s)
		for a, act := range st.Actions {
			tr := act.T
			indices := tr.Indices()
			probs := tr.Probabilities()
			rewards := tr.Rewards()

			if allowZeros {
				q := make([]float64, nStates)
				for k := 0; k < nStates; k++ {
					p := probabilityFor(indices, probs, int64(k))
					r := rewardFor(indices, rewards, int64(k))
					if err := out.AddTransition(s, a, k, int64(k), 1.0, r); err != nil {
						return nil, err
					}
					q[k] = p
				}
				if nStates > 0 {
					if err := out.SetBaseDistribution(s, a, q); err != nil {
						return nil, err
					}
				}
			} else {
				q := make([]float64, len(indices))
				for k, idx := range indices {
					if err := out.AddTransition(s, a, k, idx, 1.0, rewards[k]); err != nil {
						return nil, err
					}
					q[k] = probs[k]
				}
				if len(q) > 0 {
					if err := out.SetBaseDistribution(s, a, q); err != nil {
						return nil, err
					}
				}
			}

			if err := out.SetThreshold(s, a, 0); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

func probabilityFor(indices []int64, probs []float64, k int64) float64 {
	for i, idx := range indices {
		if idx == k {
			return probs[i]
		}
	}
	return 0
}

func rewardFor(indices []int64, rewards []float64, k int64) float64 {
	for i, idx := range indices {
		if idx == k {
			return rewards[i]
		}
	}
	return 0
}
