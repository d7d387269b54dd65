// Package l1opt implements the L1 worst-case inner optimization (§4.3): given outcome
// values z, a base distribution q, and an L1 budget t, find
//
//	p* = argmin_p  p.z   s.t.  ||p-q||_1 <= t,  sum(p) = 1,  p >= 0
//
// The problem is a linear program over the L1 ball intersected with the simplex, whose
// vertex structure makes a greedy mass-exchange optimal: shift mass away from the
// highest-valued outcomes (in decreasing order of z) into the single lowest-valued
// outcome, up to t/2 total mass moved (moving delta mass costs 2*delta of L1 budget,
// since the donor and the receiver each move by delta). This is O(n log n) for the
// sort; a reference LP-based oracle for testing lives in l1opt_lp_test.go only.
package l1opt

import "sort"

// WorstCase returns (p*, p*.z) minimizing p.z subject to ||p-q||_1 <= t, sum(p)=1,
// p>=0. Ties among equal z values are broken deterministically by input index (lowest
// index sorts first among equals), so the result is reproducible for a given input
// ordering. q is assumed to already sum to 1; t is clamped to [0,2].
func WorstCase(z, q []float64, t float64) (p []float64, value float64) {
	n := len(z)
	p = append([]float64(nil), q...)
	if n == 0 {
		return p, 0
	}
	if t < 0 {
		t = 0
	}
	if t > 2 {
		t = 2
	}

	kstar := argmin(z)

	// Order all non-kstar indices by decreasing z (ties by ascending original index).
	order := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if i != kstar {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return z[order[a]] > z[order[b]]
	})

	remaining := t / 2
	for _, i := range order {
		if remaining <= 0 {
			break
		}
		move := p[i]
		if move > remaining {
			move = remaining
		}
		p[i] -= move
		p[kstar] += move
		remaining -= move
	}

	value = 0
	for i := range p {
		value += p[i] * z[i]
	}
	return p, value
}

func argmin(z []float64) int {
	best := 0
	for i := 1; i < len(z); i++ {
		if z[i] < z[best] {
			best = i
		}
	}
	return best
}
