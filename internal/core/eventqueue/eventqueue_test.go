package eventqueue

import "testing"

func mk(id uint16) Event { return Event{ID: id} }

func TestPushDrainOrder(t *testing.T) {
	q := New(8)
	for i := uint16(0); i < 5; i++ {
		q.Push(mk(i))
	}
	dst := make([]Event, 5)
	n := q.DrainTo(dst)
	if n != 5 {
		t.Fatalf("expected 5 drained, got %d", n)
	}
	for i, ev := range dst {
		if ev.ID != uint16(i) {
			t.Fatalf("drain order mismatch at %d: got %d", i, ev.ID)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty after full drain")
	}
}

// Property 8 / Scenario F: overwrite-oldest sliding window.
func TestOverwriteOldestSlidingWindow(t *testing.T) {
	const capacity = 256
	q := New(capacity)
	for i := uint16(0); i < capacity+4; i++ {
		q.Push(mk(i))
	}
	dst := make([]Event, capacity)
	n := q.DrainTo(dst)
	if n != capacity {
		t.Fatalf("expected %d drained, got %d", capacity, n)
	}
	for i, ev := range dst {
		want := uint16(4 + i)
		if ev.ID != want {
			t.Fatalf("at %d: got id %d want %d", i, ev.ID, want)
		}
	}
}

func TestCopyToDoesNotAdvance(t *testing.T) {
	q := New(8)
	q.Push(mk(1))
	q.Push(mk(2))

	dst := make([]Event, 2)
	n := q.CopyTo(dst)
	if n != 2 {
		t.Fatalf("expected 2 peeked, got %d", n)
	}
	if q.Len() != 2 {
		t.Fatalf("expected queue untouched after CopyTo, got len %d", q.Len())
	}
}
