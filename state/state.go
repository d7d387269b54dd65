// Package state implements the ordered, owning containers for actions (§3): a State
// owns a dense sequence of RegularActions (action id = position); a RobustState owns a
// dense sequence of L1OutcomeActions. A state with zero actions is terminal.
package state

import "mdp/action"

// State owns an ordered sequence of nominal actions.
type State struct {
	Actions []*action.RegularAction
}

// New returns a state with no actions (terminal until an action is added).
func New() *State {
	return &State{}
}

// Terminal reports whether the state has no actions.
func (s *State) Terminal() bool {
	return len(s.Actions) == 0
}

// EnsureAction grows Actions so index i is addressable, filling new slots with fresh
// empty RegularActions.
func (s *State) EnsureAction(i int) {
	for len(s.Actions) <= i {
		s.Actions = append(s.Actions, action.NewRegularAction())
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := &State{Actions: make([]*action.RegularAction, len(s.Actions))}
	for i, a := range s.Actions {
		c.Actions[i] = a.Clone()
	}
	return c
}

// RobustState owns an ordered sequence of L1-robust actions.
type RobustState struct {
	Actions []*action.L1OutcomeAction
}

// NewRobust returns a robust state with no actions.
func NewRobust() *RobustState {
	return &RobustState{}
}

// Terminal reports whether the state has no actions.
func (s *RobustState) Terminal() bool {
	return len(s.Actions) == 0
}

// EnsureAction grows Actions so index i is addressable, filling new slots with fresh
// empty L1OutcomeActions.
func (s *RobustState) EnsureAction(i int) {
	for len(s.Actions) <= i {
		s.Actions = append(s.Actions, action.NewL1OutcomeAction())
	}
}

// Clone returns a deep copy.
func (s *RobustState) Clone() *RobustState {
	c := &RobustState{Actions: make([]*action.L1OutcomeAction, len(s.Actions))}
	for i, a := range s.Actions {
		c.Actions[i] = a.Clone()
	}
	return c
}
