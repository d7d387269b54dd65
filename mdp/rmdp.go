package mdp

import (
	"mdp/action"
	"mdp/mdperrors"
	"mdp/state"
)

// RMDP is an ordered container of L1-robust states.
type RMDP struct {
	States []*state.RobustState
}

// NewRobust returns an empty RMDP.
func NewRobust() *RMDP {
	return &RMDP{}
}

// StateCount returns the number of states.
func (m *RMDP) StateCount() int {
	return len(m.States)
}

// EnsureState grows States so state id i is addressable.
func (m *RMDP) EnsureState(i int) {
	for len(m.States) <= i {
		m.States = append(m.States, state.NewRobust())
	}
}

// ActionCount returns the number of actions at state s.
func (m *RMDP) ActionCount(s int) (int, error) {
	if s < 0 || s >= len(m.States) {
		return 0, mdperrors.ErrOutOfRange
	}
	return len(m.States[s].Actions), nil
}

// OutcomeCount returns the number of outcomes of action (s,a).
func (m *RMDP) OutcomeCount(s, a int) (int, error) {
	act, err := m.Action(s, a)
	if err != nil {
		return 0, err
	}
	return len(act.Outcomes), nil
}

// Action returns the L1-robust action at (s,a), or an error if either id is unset.
func (m *RMDP) Action(s, a int) (*action.L1OutcomeAction, error) {
	if s < 0 || s >= len(m.States) {
		return nil, mdperrors.ErrOutOfRange
	}
	st := m.States[s]
	if a < 0 || a >= len(st.Actions) {
		return nil, mdperrors.ErrOutOfRange
	}
	return st.Actions[a], nil
}

// AddTransition adds probability mass prob and reward to outcome (s,a,outcome)'s
// transition to `to`, auto-extending containers as needed.
func (m *RMDP) AddTransition(s, a, outcome int, to int64, prob, reward float64) error {
	if s < 0 || a < 0 || outcome < 0 {
		return mdperrors.ErrOutOfRange
	}
	m.EnsureState(s)
	m.States[s].EnsureAction(a)
	act := m.States[s].Actions[a]
	act.EnsureOutcome(outcome)
	return act.Outcomes[outcome].Add(to, prob, reward)
}

// SetBaseDistribution overwrites the base distribution q for action (s,a). len(q)
// must equal the action's outcome count.
func (m *RMDP) SetBaseDistribution(s, a int, q []float64) error {
	act, err := m.Action(s, a)
	if err != nil {
		return err
	}
	if len(q) != len(act.Outcomes) {
		return mdperrors.ErrShapeMismatch
	}
	for _, v := range q {
		if v < 0 {
			return mdperrors.ErrInvalidDistribution
		}
	}
	act.Q = append([]float64(nil), q...)
	return nil
}

// SetThreshold overwrites the L1 budget for action (s,a).
func (m *RMDP) SetThreshold(s, a int, t float64) error {
	act, err := m.Action(s, a)
	if err != nil {
		return err
	}
	return act.SetThreshold(t)
}

// SetAllThresholds overwrites the L1 budget for every action in the RMDP (the global
// setter form of SetThreshold mentioned in §6's configuration parameters).
func (m *RMDP) SetAllThresholds(t float64) error {
	for _, st := range m.States {
		for _, act := range st.Actions {
			if err := act.SetThreshold(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (m *RMDP) Clone() *RMDP {
	c := &RMDP{States: make([]*state.RobustState, len(m.States))}
	for i, s := range m.States {
		c.States[i] = s.Clone()
	}
	return c
}
