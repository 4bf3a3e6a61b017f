// Package sparseset implements the dense SoA per-type component storage
// described in SPEC_FULL.md §3/§4.3. It is grounded on the teacher's
// internal/core/ecs/component.go PtrComponentStore[T] — a generic, no-reflect
// map keyed by entity id — restructured here from a Go map into the
// dense/sparse parallel-array layout the spec requires so that swap-remove
// stays O(1) and iteration stays cache-dense.
package sparseset

import "github.com/l1jgo/enginecore/internal/core/coreerr"

// Set is a fixed-capacity sparse set of type T indexed by entity slot index.
//
// Invariant: for every idx with a component, sparse[idx] < count and
// dense[sparse[idx]] == idx.
type Set[T any] struct {
	cap    uint32
	data   []T
	dense  []uint32
	sparse []uint32
	count  uint32
}

const noSlot = ^uint32(0)

func New[T any](cap uint32) *Set[T] {
	s := &Set[T]{
		cap:    cap,
		data:   make([]T, cap),
		dense:  make([]uint32, cap),
		sparse: make([]uint32, cap),
	}
	for i := range s.sparse {
		s.sparse[i] = noSlot
	}
	return s
}

func (s *Set[T]) Has(idx uint32) bool {
	return idx < s.cap && s.sparse[idx] != noSlot && s.sparse[idx] < s.count
}

// Add inserts a new component at idx. Returns ErrComponentExists if idx
// already has one, ErrOutOfSpace if the set is at capacity.
func (s *Set[T]) Add(idx uint32, v T) error {
	if s.Has(idx) {
		return coreerr.ErrComponentExists
	}
	if s.count >= s.cap {
		return coreerr.ErrOutOfSpace
	}
	d := s.count
	s.dense[d] = idx
	s.sparse[idx] = d
	s.data[d] = v
	s.count++
	return nil
}

// Set overwrites the value at idx in place, without touching dense/sparse.
func (s *Set[T]) Set(idx uint32, v T) error {
	if !s.Has(idx) {
		return coreerr.ErrComponentMissing
	}
	s.data[s.sparse[idx]] = v
	return nil
}

func (s *Set[T]) Get(idx uint32) (*T, error) {
	if !s.Has(idx) {
		return nil, coreerr.ErrComponentMissing
	}
	return &s.data[s.sparse[idx]], nil
}

// Remove deletes idx's component via swap-with-last on the dense array.
// Removing a missing component is a silent no-op, per spec §4.3.
func (s *Set[T]) Remove(idx uint32) {
	if !s.Has(idx) {
		return
	}
	d := s.sparse[idx]
	last := s.count - 1
	lastIdx := s.dense[last]

	s.dense[d] = lastIdx
	s.sparse[lastIdx] = d
	s.data[d] = s.data[last]

	s.sparse[idx] = noSlot
	s.count--
}

func (s *Set[T]) Len() uint32 { return s.count }

// Each iterates the dense array in current swap-remove order (not stable
// across removes).
func (s *Set[T]) Each(fn func(idx uint32, v *T)) {
	for d := uint32(0); d < s.count; d++ {
		fn(s.dense[d], &s.data[d])
	}
}
