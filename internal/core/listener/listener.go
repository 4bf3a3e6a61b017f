// Package listener implements the EventListeners slot table (kind →
// callback) described in SPEC_FULL.md §4/§6. Grounded on the handler-slice-
// by-type idiom in internal/core/event/bus.go, specialized here to a
// slot-table keyed by numeric event kind rather than reflect.Type, since
// eventqueue.Event already carries its kind as a plain uint16.
package listener

import "github.com/l1jgo/enginecore/internal/core/eventqueue"

// Func receives a drained event. Run once per frame over whatever the
// EventQueue yielded, on the draining goroutine.
type Func func(ev eventqueue.Event)

type slot struct {
	kind   uint16
	fn     Func
	active bool
}

// Table maps event kind to zero or more callbacks, dispatched in
// registration order.
type Table struct {
	slots []slot
}

func New() *Table {
	return &Table{}
}

// Register adds a callback for kind.
func (t *Table) Register(kind uint16, fn Func) {
	t.slots = append(t.slots, slot{kind: kind, fn: fn, active: true})
}

// Dispatch delivers ev to every active callback registered for its kind.
func (t *Table) Dispatch(ev eventqueue.Event) {
	for i := range t.slots {
		s := &t.slots[i]
		if s.active && s.kind == ev.ID {
			s.fn(ev)
		}
	}
}

// DrainQueue drains q and dispatches up to len(scratch) of its events in
// order; events beyond len(scratch) are discarded by the drain. Returns the
// number dispatched. Called once per frame by the
// driver for script-facing listeners (SPEC_FULL.md §2).
func (t *Table) DrainQueue(q *eventqueue.Queue, scratch []eventqueue.Event) int {
	n := q.DrainTo(scratch)
	for i := 0; i < n; i++ {
		t.Dispatch(scratch[i])
	}
	return n
}
