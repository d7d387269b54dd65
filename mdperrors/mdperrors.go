// Package mdperrors defines the structured error kinds surfaced by the rest of this
// module. Every kind is a sentinel so callers can discriminate with errors.Is, while the
// wrapping fmt.Errorf call still gives a human a readable message.
package mdperrors

import "errors"

var (
	// ErrShapeMismatch: value-function/policy/distribution length disagrees with |S|,
	// or a dense-matrix ingestion's dimensions are inconsistent.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidDistribution: a base distribution does not sum to 1 (within tolerance)
	// or has negative entries.
	ErrInvalidDistribution = errors.New("invalid distribution")

	// ErrInvalidParameter: an unknown uncertainty mode, non-positive discount where
	// positivity is required, a negative probability, or a non-unique (action,outcome)
	// pair during dense-matrix ingestion.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrOutOfRange: a state/action/outcome/sample id refers to a slot that cannot be
	// auto-created (reading before writing).
	ErrOutOfRange = errors.New("identifier out of range")

	// ErrNotNormalized: a Transition's probabilities sum to neither 0 nor 1 at a point
	// where normalization is required.
	ErrNotNormalized = errors.New("transition not normalized")

	// ErrUnsupported: an operation requiring a uniform action count was called on a
	// ragged MDP.
	ErrUnsupported = errors.New("unsupported on ragged MDP")
)
