// Package componentstore implements the type-erased registry mapping a
// 64-bit component type id to a *sparseset.Set[T], described in
// SPEC_FULL.md §3/§4.3. Grounded on the teacher's internal/core/ecs/registry.go
// Registry/Removable bulk-cleanup idiom, generalized here from a slice of
// interfaces into an open-addressed table keyed by type id so the
// CommandBuffer's deferred flush path can apply payload bytes against a
// type it never names at compile time.
package componentstore

import (
	"hash/fnv"
	"reflect"
	"unsafe"

	"github.com/l1jgo/enginecore/internal/core/coreerr"
	"github.com/l1jgo/enginecore/internal/core/sparseset"
)

// TypeID computes the 64-bit FNV-1a hash of T's canonical name. Two
// distinct types must not collide: the table matches slots on id alone, so
// two types with the same id share one slot. The name kept in slot.name is
// not consulted when probing.
func TypeID[T any]() uint64 {
	t := reflect.TypeOf((*T)(nil)).Elem()
	name := t.PkgPath() + "." + t.Name()
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

// slot is one entry of the open-addressed table. The vtable closures close
// over a concrete *sparseset.Set[T], erasing T at the call site the way the
// spec's byte-arena + function-pointer vtable does.
type slot struct {
	used bool
	id   uint64
	name string

	has      func(idx uint32) bool
	addBytes func(idx uint32, payload []byte) error
	setBytes func(idx uint32, payload []byte) error
	remove   func(idx uint32)
	set      any // *sparseset.Set[T], returned by Ensure on later lookups
}

// Store is the open-addressed ComponentStore. capacity must be a power of
// two; slots probe linearly from id & (capacity-1).
type Store struct {
	slots []slot
	mask  uint64
}

func New(capacity uint32) *Store {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic("componentstore: capacity must be a power of two")
	}
	return &Store{
		slots: make([]slot, capacity),
		mask:  uint64(capacity - 1),
	}
}

// Ensure returns the sparseset.Set[T] for T, creating and installing it (with
// vtable) on first use. entityCap bounds the sparse set's own capacity.
func Ensure[T any](s *Store, entityCap uint32) (*sparseset.Set[T], error) {
	id := TypeID[T]()
	i, found, err := s.probe(id)
	if err != nil {
		return nil, err
	}
	if found {
		return s.slots[i].set.(*sparseset.Set[T]), nil
	}

	set := sparseset.New[T](entityCap)
	t := reflect.TypeOf((*T)(nil)).Elem()
	s.slots[i] = slot{
		used: true,
		id:   id,
		name: t.PkgPath() + "." + t.Name(),
		has:  set.Has,
		addBytes: func(idx uint32, payload []byte) error {
			v, err := bytesToValue[T](payload)
			if err != nil {
				return err
			}
			return set.Add(idx, v)
		},
		setBytes: func(idx uint32, payload []byte) error {
			v, err := bytesToValue[T](payload)
			if err != nil {
				return err
			}
			return set.Set(idx, v)
		},
		remove: set.Remove,
		set:    set,
	}
	return set, nil
}

// probe finds id's slot, returning its index and whether it already exists.
// On a full table it returns ErrOutOfSpace.
func (s *Store) probe(id uint64) (uint32, bool, error) {
	start := id & s.mask
	n := uint64(len(s.slots))
	for i := uint64(0); i < n; i++ {
		idx := (start + i) % n
		sl := &s.slots[idx]
		if !sl.used {
			return uint32(idx), false, nil
		}
		if sl.id == id {
			return uint32(idx), true, nil
		}
	}
	return 0, false, coreerr.ErrOutOfSpace
}

// Has reports whether idx has a component of the type registered under id.
// Returns false if the type was never registered.
func (s *Store) Has(id uint64, idx uint32) bool {
	i, found, err := s.probe(id)
	if err != nil || !found {
		return false
	}
	return s.slots[i].has(idx)
}

// AddBytes applies a deferred Add command's staged payload against the
// component type id, dispatching through the vtable. Used only by the
// CommandBuffer flush path (SPEC_FULL.md §4.5/§4.7); typed callers use
// Ensure + Set[T].Add directly.
func (s *Store) AddBytes(id uint64, idx uint32, payload []byte) error {
	i, found, err := s.probe(id)
	if err != nil {
		return err
	}
	if !found {
		return coreerr.ErrComponentMissing
	}
	return s.slots[i].addBytes(idx, payload)
}

func (s *Store) SetBytes(id uint64, idx uint32, payload []byte) error {
	i, found, err := s.probe(id)
	if err != nil {
		return err
	}
	if !found {
		return coreerr.ErrComponentMissing
	}
	return s.slots[i].setBytes(idx, payload)
}

// Remove is a no-op if the type was never registered, matching spec §4.3's
// "remove on missing → silent no-op".
func (s *Store) Remove(id uint64, idx uint32) {
	i, found, _ := s.probe(id)
	if !found {
		return
	}
	s.slots[i].remove(idx)
}

// RemoveAll removes idx from every registered component type. Grounded on
// the teacher's Registry.RemoveAll bulk-cleanup call.
func (s *Store) RemoveAll(idx uint32) {
	for i := range s.slots {
		if s.slots[i].used {
			s.slots[i].remove(idx)
		}
	}
}

// bytesToValue reinterprets payload as a T. T must be a fixed-layout POD
// type (no pointers/strings/slices) for this to be sound; component types
// crossing the command-buffer boundary are expected to satisfy that, the
// same way the spec's byte-arena staging does.
func bytesToValue[T any](payload []byte) (T, error) {
	var zero T
	sz := int(unsafe.Sizeof(zero))
	if len(payload) < sz {
		return zero, coreerr.ErrComponentMissing
	}
	return *(*T)(unsafe.Pointer(&payload[0])), nil
}
