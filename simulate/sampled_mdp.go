package simulate

import (
	"mdp/mdp"
)

// Samples is an append-only store of recorded transitions plus an initial-state
// histogram, the raw input to SampledMDP (§4.7). Adding samples never discards
// prior samples.
type Samples struct {
	Records []Sample
	// InitialCounts[s] is the number of times state s was observed as an
	// episode's starting state.
	InitialCounts map[int]float64
}

// NewSamples returns an empty Samples store.
func NewSamples() *Samples {
	return &Samples{InitialCounts: make(map[int]float64)}
}

// Add appends records to the store, treating each record whose Step == 0 as an
// initial-state observation.
func (s *Samples) Add(records ...Sample) {
	for _, r := range records {
		s.Records = append(s.Records, r)
		if r.Step == 0 {
			s.InitialCounts[r.S] += r.Weight
		}
	}
}

// SampledMDP incrementally estimates a maximum-likelihood MDP from samples
// (§4.7): an in-progress MDP plus a running per-(s,a) weight total.
type SampledMDP struct {
	m       *mdp.MDP
	weights map[[2]int]float64
}

// NewSampledMDP returns an empty estimator.
func NewSampledMDP() *SampledMDP {
	return &SampledMDP{m: mdp.New(), weights: make(map[[2]int]float64)}
}

// AddSample folds one sample into the estimate: increments the (s,a) transition's
// entry for s' by weight w, increments the running W[s,a] by w, and lets
// Transition.Add perform the weighted-mean reward merge. The resulting
// transition is left unnormalized; GetMDP performs the final division by
// W[s,a].
func (e *SampledMDP) AddSample(smp Sample) error {
	key := [2]int{smp.S, smp.A}
	e.weights[key] += smp.Weight
	return e.m.AddTransition(smp.S, smp.A, smp.SPrime, smp.Weight, smp.R)
}

// AddSamples folds every sample of a Samples store into the estimate.
func (e *SampledMDP) AddSamples(samples *Samples) error {
	for _, smp := range samples.Records {
		if err := e.AddSample(smp); err != nil {
			return err
		}
	}
	return nil
}

// GetMDP extracts a normalized MDP from the current estimate: for every
// (s,a) with W[s,a] > 0, each transition entry's probability is the
// accumulated mass divided by W[s,a] (§4.7), producing per-(s,a)
// probabilities that sum to 1. (s,a) pairs with no observed mass are left as
// empty (terminal-looking) actions.
func (e *SampledMDP) GetMDP() *mdp.MDP {
	out := e.m.Clone()
	for s, st := range out.States {
		for a, act := range st.Actions {
			w := e.weights[[2]int{s, a}]
			if w <= 0 {
				continue
			}
			for _, idx := range append([]int64(nil), act.T.Indices()...) {
				act.T.SetProbabilityAt(idx, act.T.ProbabilityAt(idx)/w)
			}
		}
	}
	return out
}

// InitialDistribution returns a histogram over the observed starting states
// (InitialCounts), normalized so probabilities sum to 1 (§4.7). Only states
// with positive observed count are included.
func (samples *Samples) InitialDistribution() (indices []int64, probs []float64) {
	total := 0.0
	for _, c := range samples.InitialCounts {
		total += c
	}
	if total <= 0 {
		return nil, nil
	}
	for s, c := range samples.InitialCounts {
		if c <= 0 {
			continue
		}
		indices = append(indices, int64(s))
		probs = append(probs, c/total)
	}
	return indices, probs
}
