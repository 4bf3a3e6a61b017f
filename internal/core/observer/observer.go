// Package observer implements the fixed-capacity callback registry fired
// synchronously on component add/set/remove, per SPEC_FULL.md §4.4. No
// teacher file implements this directly; it is shaped after the
// handler-slice registration pattern in internal/core/event/bus.go,
// specialized to a fixed-capacity, kind-filtered, synchronous dispatch list.
package observer

import (
	"github.com/l1jgo/enginecore/internal/core/coreerr"
	"github.com/l1jgo/enginecore/internal/core/handle"
)

// Kind distinguishes which component lifecycle event triggered a callback.
type Kind uint8

const (
	OnAdd Kind = iota
	OnSet
	OnRemove
)

// Func receives the component type id, the lifecycle kind, the World the
// mutation happened on, and the affected entity's handle, per SPEC_FULL.md
// §4.4's notify(type_id, kind, world_ptr, handle). W is a type parameter
// rather than a direct *world.World field: World already imports this
// package to hold its observer list, so naming the concrete type here
// would cycle.
type Func[W any] func(typeID uint64, kind Kind, w W, h handle.Handle)

type slot[W any] struct {
	typeID uint64
	kind   Kind
	fn     Func[W]
	active bool
}

// List is a fixed-capacity observer registry, parameterized over the world
// type handed back to its callbacks.
type List[W any] struct {
	slots []slot[W]
}

func New[W any](capacity uint32) *List[W] {
	return &List[W]{slots: make([]slot[W], 0, capacity)}
}

// Register appends a callback. Returns ErrOutOfSpace once capacity is hit.
func (l *List[W]) Register(typeID uint64, kind Kind, fn Func[W]) error {
	if len(l.slots) == cap(l.slots) {
		return coreerr.ErrOutOfSpace
	}
	l.slots = append(l.slots, slot[W]{typeID: typeID, kind: kind, fn: fn, active: true})
	return nil
}

// Notify invokes every active callback matching (typeID, kind), in
// registration order, on the caller's goroutine. A panicking callback is
// recovered so the remaining observers still fire (grounded on
// lixenwraith-vi-fighter/core/crash_handler.go's Go() panic-recovery
// pattern, generalized here to an in-place recover rather than a launch).
func (l *List[W]) Notify(typeID uint64, kind Kind, w W, h handle.Handle) {
	for i := range l.slots {
		s := &l.slots[i]
		if !s.active || s.typeID != typeID || s.kind != kind {
			continue
		}
		func() {
			defer func() { recover() }()
			s.fn(typeID, kind, w, h)
		}()
	}
}
