// Package atomicfloat provides a lock-free float64 box used by the solver's
// parallel Jacobi sweeps to accumulate a running max-residual across workers
// without a mutex guarding the whole value table.
package atomicfloat

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Float64 encapsulates a float64 for non-locking atomic operations. Add makes a
// single CAS attempt and leaves retries to the caller: a failed CompareAndSwap
// just means another writer raced ahead. UpdateMax retries internally.
type Float64 struct {
	val float64
}

// New returns a Float64 initialized to val.
func New(val float64) *Float64 {
	return &Float64{val: val}
}

// Load atomically reads the float64.
func (f *Float64) Load() float64 {
	bits := atomic.LoadUint64((*uint64)(unsafe.Pointer(&f.val)))
	return math.Float64frombits(bits)
}

// Store atomically overwrites the float64.
func (f *Float64) Store(v float64) {
	atomic.StoreUint64((*uint64)(unsafe.Pointer(&f.val)), math.Float64bits(v))
}

// Add attempts a single CAS-based addend; succeeded is false if a concurrent
// writer changed the value first, in which case the caller may retry.
func (f *Float64) Add(addend float64) (newVal float64, succeeded bool) {
	old := f.Load()
	newVal = old + addend
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&f.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
	return
}

// UpdateMax CAS-loops v into the box if v exceeds the current value, retrying
// until it either installs v or observes a current value already >= v. Used by
// parallel Jacobi sweeps where every worker reports its own local max residual
// and they all fold into one running maximum.
func (f *Float64) UpdateMax(v float64) {
	for {
		old := f.Load()
		if v <= old {
			return
		}
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&f.val)),
			math.Float64bits(old),
			math.Float64bits(v)) {
			return
		}
	}
}
