// Package mdp implements the ordered, owning MDP/RMDP containers (§3/§4.4) and their
// builder APIs (§6): insert/edit transitions by dense 0-based (state, action[, outcome])
// ids, with auto-extension of containers when an id beyond the current end is
// referenced.
package mdp

import (
	"mdp/action"
	"mdp/mdperrors"
	"mdp/state"
)

// MDP is an ordered container of nominal states.
type MDP struct {
	States []*state.State
}

// New returns an empty MDP.
func New() *MDP {
	return &MDP{}
}

// StateCount returns the number of states.
func (m *MDP) StateCount() int {
	return len(m.States)
}

// EnsureState grows States so state id i is addressable.
func (m *MDP) EnsureState(i int) {
	for len(m.States) <= i {
		m.States = append(m.States, state.New())
	}
}

// ActionCount returns the number of actions at state s, or an error if s is unset.
func (m *MDP) ActionCount(s int) (int, error) {
	if s < 0 || s >= len(m.States) {
		return 0, mdperrors.ErrOutOfRange
	}
	return len(m.States[s].Actions), nil
}

// AddTransition adds probability mass prob and reward to the transition
// (state, action) -> to, auto-extending state/action containers as needed. A
// negative probability is rejected.
func (m *MDP) AddTransition(s, a int, to int64, prob, reward float64) error {
	if s < 0 || a < 0 {
		return mdperrors.ErrOutOfRange
	}
	m.EnsureState(s)
	m.States[s].EnsureAction(a)
	return m.States[s].Actions[a].T.Add(to, prob, reward)
}

// SetReward overwrites the reward of an existing (s,a)->to entry. Returns
// mdperrors.ErrOutOfRange if the state, action, or entry does not already exist.
func (m *MDP) SetReward(s, a int, to int64, reward float64) error {
	if s < 0 || s >= len(m.States) {
		return mdperrors.ErrOutOfRange
	}
	st := m.States[s]
	if a < 0 || a >= len(st.Actions) {
		return mdperrors.ErrOutOfRange
	}
	return st.Actions[a].T.SetReward(to, reward)
}

// Transition returns the nominal transition for (s,a), or an error if either id is
// unset.
func (m *MDP) Transition(s, a int) (*action.RegularAction, error) {
	if s < 0 || s >= len(m.States) {
		return nil, mdperrors.ErrOutOfRange
	}
	st := m.States[s]
	if a < 0 || a >= len(st.Actions) {
		return nil, mdperrors.ErrOutOfRange
	}
	return st.Actions[a], nil
}

// Clone returns a deep copy.
func (m *MDP) Clone() *MDP {
	c := &MDP{States: make([]*state.State, len(m.States))}
	for i, s := range m.States {
		c.States[i] = s.Clone()
	}
	return c
}
