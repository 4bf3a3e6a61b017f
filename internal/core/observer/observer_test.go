package observer

import (
	"testing"

	"github.com/l1jgo/enginecore/internal/core/handle"
)

// fakeWorld stands in for *world.World in these tests — observer is
// generic over the world type precisely so it doesn't need to import the
// real one.
type fakeWorld struct{ tag string }

func TestNotifyOrderAndFilter(t *testing.T) {
	l := New[*fakeWorld](8)
	var calls []string
	_ = l.Register(1, OnAdd, func(uint64, Kind, *fakeWorld, handle.Handle) { calls = append(calls, "a1") })
	_ = l.Register(1, OnAdd, func(uint64, Kind, *fakeWorld, handle.Handle) { calls = append(calls, "a2") })
	_ = l.Register(1, OnRemove, func(uint64, Kind, *fakeWorld, handle.Handle) { calls = append(calls, "remove") })
	_ = l.Register(2, OnAdd, func(uint64, Kind, *fakeWorld, handle.Handle) { calls = append(calls, "other-type") })

	l.Notify(1, OnAdd, &fakeWorld{}, handle.New(5, 0))

	want := []string{"a1", "a2"}
	if len(calls) != len(want) {
		t.Fatalf("got %v want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("got %v want %v", calls, want)
		}
	}
}

func TestOutOfSpace(t *testing.T) {
	l := New[*fakeWorld](1)
	noop := func(uint64, Kind, *fakeWorld, handle.Handle) {}
	if err := l.Register(1, OnAdd, noop); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := l.Register(1, OnAdd, noop); err == nil {
		t.Fatalf("expected ErrOutOfSpace on second register with capacity 1")
	}
}

func TestPanicInCallbackDoesNotStopRemaining(t *testing.T) {
	l := New[*fakeWorld](8)
	var secondRan bool
	_ = l.Register(1, OnAdd, func(uint64, Kind, *fakeWorld, handle.Handle) { panic("boom") })
	_ = l.Register(1, OnAdd, func(uint64, Kind, *fakeWorld, handle.Handle) { secondRan = true })

	l.Notify(1, OnAdd, &fakeWorld{}, handle.Zero)

	if !secondRan {
		t.Fatalf("expected second observer to run despite first panicking")
	}
}

// TestNotifyPassesWorldAndHandleThrough exercises a callback that actually
// reads the world and handle it's handed, not just the type id — the gap
// the bare-index signature used to leave unexercised.
func TestNotifyPassesWorldAndHandleThrough(t *testing.T) {
	l := New[*fakeWorld](4)
	w := &fakeWorld{tag: "the-world"}
	h := handle.New(7, 3)

	var gotWorld *fakeWorld
	var gotHandle handle.Handle
	_ = l.Register(9, OnSet, func(typeID uint64, kind Kind, w *fakeWorld, h handle.Handle) {
		gotWorld = w
		gotHandle = h
	})

	l.Notify(9, OnSet, w, h)

	if gotWorld != w {
		t.Fatalf("expected callback to receive the same world pointer")
	}
	if gotHandle != h {
		t.Fatalf("expected callback to receive the handle unchanged, got %v want %v", gotHandle, h)
	}
}
