// Package serialize reads and writes MDPs and RMDPs as JSON, and writes the
// CSV files of an implementable-MDP problem (MDP table, observation map and
// initial distribution). No example repo in the retrieval pack imports a third-party
// serialization library (all use encoding/json directly for their own API
// payloads), so this stays on the standard library rather than importing an
// out-of-pack dependency (see DESIGN.md).
package serialize

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"mdp/mdp"
	"mdp/robust"
)

// TransitionJSON is the JSON shape of a single sparse transition entry.
type TransitionJSON struct {
	Next        int64   `json:"next"`
	Probability float64 `json:"probability"`
	Reward      float64 `json:"reward"`
}

// ActionJSON is the JSON shape of one state's action: its nominal transition
// row.
type ActionJSON struct {
	Transitions []TransitionJSON `json:"transitions"`
}

// StateJSON is the JSON shape of one state: its ordered actions.
type StateJSON struct {
	Actions []ActionJSON `json:"actions"`
}

// MDPJSON is the top-level JSON shape of an MDP: its ordered states.
type MDPJSON struct {
	States []StateJSON `json:"states"`
}

// ToJSON renders m as indented JSON bytes, one state -> action -> sparse
// transition tree.
func ToJSON(m *mdp.MDP) ([]byte, error) {
	doc := MDPJSON{States: make([]StateJSON, len(m.States))}
	for s, st := range m.States {
		actions := make([]ActionJSON, len(st.Actions))
		for a, act := range st.Actions {
			indices := act.T.Indices()
			probs := act.T.Probabilities()
			rewards := act.T.Rewards()
			trs := make([]TransitionJSON, len(indices))
			for i := range indices {
				trs[i] = TransitionJSON{Next: indices[i], Probability: probs[i], Reward: rewards[i]}
			}
			actions[a] = ActionJSON{Transitions: trs}
		}
		doc.States[s] = StateJSON{Actions: actions}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FromJSON parses bytes produced by ToJSON back into an MDP.
func FromJSON(data []byte) (*mdp.MDP, error) {
	doc := MDPJSON{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	m := mdp.New()
	for s, st := range doc.States {
		m.EnsureState(s)
		for a, act := range st.Actions {
			m.States[s].EnsureAction(a)
			for _, tr := range act.Transitions {
				if err := m.AddTransition(s, a, tr.Next, tr.Probability, tr.Reward); err != nil {
					return nil, err
				}
			}
		}
	}
	return m, nil
}

// RobustActionJSON is the JSON shape of one L1-robust action: its outcomes,
// base distribution, and threshold.
type RobustActionJSON struct {
	Outcomes  []ActionJSON `json:"outcomes"`
	Q         []float64    `json:"q"`
	Threshold float64      `json:"threshold"`
}

// RobustStateJSON is the JSON shape of one robust state: its ordered actions.
type RobustStateJSON struct {
	Actions []RobustActionJSON `json:"actions"`
}

// RMDPJSON is the top-level JSON shape of an RMDP: its ordered robust states.
type RMDPJSON struct {
	States []RobustStateJSON `json:"states"`
}

// ToJSONRobust renders an RMDP as indented JSON bytes, one state -> action ->
// outcome -> sparse transition tree, alongside each action's base
// distribution and threshold.
func ToJSONRobust(m *mdp.RMDP) ([]byte, error) {
	doc := RMDPJSON{States: make([]RobustStateJSON, len(m.States))}
	for s, st := range m.States {
		actions := make([]RobustActionJSON, len(st.Actions))
		for a, act := range st.Actions {
			outcomes := make([]ActionJSON, len(act.Outcomes))
			for i, o := range act.Outcomes {
				indices := o.Indices()
				probs := o.Probabilities()
				rewards := o.Rewards()
				trs := make([]TransitionJSON, len(indices))
				for j := range indices {
					trs[j] = TransitionJSON{Next: indices[j], Probability: probs[j], Reward: rewards[j]}
				}
				outcomes[i] = ActionJSON{Transitions: trs}
			}
			actions[a] = RobustActionJSON{
				Outcomes:  outcomes,
				Q:         append([]float64(nil), act.Q...),
				Threshold: act.T,
			}
		}
		doc.States[s] = RobustStateJSON{Actions: actions}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FromJSONRobust parses bytes produced by ToJSONRobust back into an RMDP.
func FromJSONRobust(data []byte) (*mdp.RMDP, error) {
	doc := RMDPJSON{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	m := mdp.NewRobust()
	for s, st := range doc.States {
		m.EnsureState(s)
		for a, act := range st.Actions {
			m.States[s].EnsureAction(a)
			for o, outcome := range act.Outcomes {
				m.States[s].Actions[a].EnsureOutcome(o)
				for _, tr := range outcome.Transitions {
					if err := m.AddTransition(s, a, o, tr.Next, tr.Probability, tr.Reward); err != nil {
						return nil, err
					}
				}
			}
			if len(act.Q) > 0 {
				if err := m.SetBaseDistribution(s, a, act.Q); err != nil {
					return nil, err
				}
			}
			if err := m.SetThreshold(s, a, act.Threshold); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// WriteImplementableCSV writes three CSV files under dir describing an
// implementable solve: mdp.csv (state, action, next, probability, reward),
// observations.csv (state, observation), and initial.csv (state,
// probability). header controls whether each file gets a header row.
func WriteImplementableCSV(dir string, m *mdp.MDP, om *robust.ObservationMap, initialIndices []int64, initialProbs []float64, header bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if err := writeMDPCSV(filepath.Join(dir, "mdp.csv"), m, header); err != nil {
		return err
	}
	if err := writeObservationsCSV(filepath.Join(dir, "observations.csv"), om, header); err != nil {
		return err
	}
	return writeInitialCSV(filepath.Join(dir, "initial.csv"), initialIndices, initialProbs, header)
}

func writeMDPCSV(path string, m *mdp.MDP, header bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if header {
		if err := w.Write([]string{"state", "action", "next", "probability", "reward"}); err != nil {
			return err
		}
	}
	for s, st := range m.States {
		for a, act := range st.Actions {
			indices := act.T.Indices()
			probs := act.T.Probabilities()
			rewards := act.T.Rewards()
			for i := range indices {
				row := []string{
					strconv.Itoa(s),
					strconv.Itoa(a),
					strconv.FormatInt(indices[i], 10),
					strconv.FormatFloat(probs[i], 'g', -1, 64),
					strconv.FormatFloat(rewards[i], 'g', -1, 64),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
	}
	return w.Error()
}

func writeObservationsCSV(path string, om *robust.ObservationMap, header bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if header {
		if err := w.Write([]string{"state", "observation"}); err != nil {
			return err
		}
	}
	if om == nil {
		return w.Error()
	}
	for s, o := range om.ObsOf {
		if err := w.Write([]string{strconv.Itoa(s), strconv.Itoa(o)}); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeInitialCSV(path string, indices []int64, probs []float64, header bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if header {
		if err := w.Write([]string{"state", "probability"}); err != nil {
			return err
		}
	}
	for i, s := range indices {
		row := []string{strconv.FormatInt(s, 10), strconv.FormatFloat(probs[i], 'g', -1, 64)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
