// Package simulate implements forward simulation of a nominal MDP under a
// policy (§4.6), producing a stream of (s,a,s',r,weight,step,run) samples, and
// the incremental maximum-likelihood MDP estimator built from such samples
// (§4.7). Concurrent episode generation mirrors the teacher's worker/fan-in
// pattern (reinforcement.alphaMonteCarloVanillaTrain): each worker goroutine
// generates whole episodes independently and sends them to a merged channel,
// fanned in with channerics.Merge.
package simulate

import (
	"context"
	"math/rand"

	channerics "github.com/niceyeti/channerics/channels"

	"mdp/mdp"
	"mdp/mdperrors"
	"mdp/transition"
)

// Sample is one recorded transition of a simulated episode.
type Sample struct {
	S      int
	A      int
	SPrime int64
	R      float64
	Weight float64
	Step   int
	Run    int
}

// Config controls a simulation run.
type Config struct {
	// Runs is the number of episodes to generate.
	Runs int
	// Horizon caps the number of steps per episode. <= 0 means unbounded (subject
	// to ProbTerm / TranLimit / terminal states).
	Horizon int
	// ProbTerm is the per-step probability of early episode termination.
	ProbTerm float64
	// TranLimit caps the cumulative number of transitions across all episodes in
	// the run; simulation halts early (possibly mid-episode) once reached. <= 0
	// means unbounded.
	TranLimit int
	// Gamma is the discount used when accumulating each run's return.
	Gamma float64
	// Seed seeds the run's random source.
	Seed int64
	// Workers is the number of concurrent episode-generator goroutines. <= 1
	// uses a single generator goroutine that produces episodes one after another.
	Workers int
}

// Simulator drives episodes of an MDP from an initial-state distribution under
// a policy.
type Simulator struct {
	M       *mdp.MDP
	Initial *transition.Transition
	Policy  Policy
}

// New returns a Simulator over m starting from the initial state distribution
// initial (a Transition whose indices are state ids; rewards are unused, §9),
// acting under policy.
func New(m *mdp.MDP, initial *transition.Transition, policy Policy) *Simulator {
	return &Simulator{M: m, Initial: initial, Policy: policy}
}

// Result is the outcome of a Run: the recorded samples and the discounted
// return of each episode.
type Result struct {
	Samples []Sample
	Returns []float64
}

// Run generates cfg.Runs episodes, returning every recorded sample and each
// episode's discounted return. Early per-step termination (ProbTerm) and a
// global transition budget (TranLimit) both apply.
func (s *Simulator) Run(ctx context.Context, cfg Config) (Result, error) {
	if s.Initial == nil || s.Initial.Size() == 0 {
		return Result{}, mdperrors.ErrInvalidParameter
	}
	if cfg.Runs <= 0 {
		return Result{}, nil
	}

	workers := cfg.Workers
	if workers <= 1 {
		workers = 1
	}

	runsPerWorker := make([]int, workers)
	for i := 0; i < cfg.Runs; i++ {
		runsPerWorker[i%workers]++
	}

	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	channels := make([]<-chan []Sample, 0, workers)
	for w := 0; w < workers; w++ {
		if runsPerWorker[w] == 0 {
			continue
		}
		rng := rand.New(rand.NewSource(cfg.Seed + int64(w)))
		runBase := 0
		for i := 0; i < w; i++ {
			runBase += runsPerWorker[i]
		}
		channels = append(channels, s.episodeWorker(genCtx.Done(), rng, cfg, runBase, runsPerWorker[w]))
	}

	merged := channerics.Merge(genCtx.Done(), channels...)

	result := Result{}
	transitionCount := 0
runLoop:
	for episode := range merged {
		ret := 0.0
		discount := 1.0
		for _, smp := range episode {
			result.Samples = append(result.Samples, smp)
			ret += discount * smp.R
			discount *= cfg.Gamma
			transitionCount++
			if cfg.TranLimit > 0 && transitionCount >= cfg.TranLimit {
				result.Returns = append(result.Returns, ret)
				cancel()
				break runLoop
			}
		}
		result.Returns = append(result.Returns, ret)
	}

	return result, nil
}

// episodeWorker generates `count` episodes starting at run id runBase,
// runBase+1, ... and sends each as a []Sample on the returned channel.
func (s *Simulator) episodeWorker(done <-chan struct{}, rng *rand.Rand, cfg Config, runBase, count int) <-chan []Sample {
	out := make(chan []Sample)
	go func() {
		defer close(out)
		for i := 0; i < count; i++ {
			select {
			case <-done:
				return
			default:
			}
			episode := s.generateEpisode(rng, cfg, runBase+i)
			select {
			case out <- episode:
			case <-done:
				return
			}
		}
	}()
	return out
}

func (s *Simulator) generateEpisode(rng *rand.Rand, cfg Config, run int) []Sample {
	var episode []Sample
	state := sampleIndex(s.Initial, rng)
	step := 0
	for {
		if cfg.Horizon > 0 && step >= cfg.Horizon {
			break
		}
		if state < 0 || int(state) >= s.M.StateCount() {
			break
		}
		st := s.M.States[state]
		nActions := len(st.Actions)
		a := s.Policy.Action(rng, int(state), nActions)
		if a < 0 {
			break
		}
		act := st.Actions[a]
		sp, r := sampleIndex(act.T, rng), 0.0
		r = act.T.RewardAt(sp)

		episode = append(episode, Sample{
			S:      int(state),
			A:      a,
			SPrime: sp,
			R:      r,
			Weight: 1,
			Step:   step,
			Run:    run,
		})

		state = sp
		step++
		if cfg.ProbTerm > 0 && rng.Float64() < cfg.ProbTerm {
			break
		}
	}
	return episode
}

// sampleIndex draws a next-state index from tr's probability weights. Weights
// need not sum exactly to 1 (the estimator's in-progress transitions are
// unnormalized); the draw is proportional to the total observed mass.
func sampleIndex(tr *transition.Transition, rng *rand.Rand) int64 {
	total := tr.TotalProbability()
	if total <= 0 {
		return -1
	}
	target := rng.Float64() * total
	cum := 0.0
	probs := tr.Probabilities()
	indices := tr.Indices()
	for i, p := range probs {
		cum += p
		if target <= cum {
			return indices[i]
		}
	}
	return indices[len(indices)-1]
}
