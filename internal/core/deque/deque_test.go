package deque

import (
	"sort"
	"sync"
	"sync/atomic"
	"testing"
)

func TestPushPopLIFO(t *testing.T) {
	d := New[int](8)
	d.PushBottom(1)
	d.PushBottom(2)
	d.PushBottom(3)

	v, ok := d.PopBottom()
	if !ok || v != 3 {
		t.Fatalf("expected LIFO pop to return 3, got %d ok=%v", v, ok)
	}
}

func TestStealFIFOFromOwnerPush(t *testing.T) {
	d := New[int](8)
	d.PushBottom(1)
	d.PushBottom(2)
	d.PushBottom(3)

	v, ok := d.Steal()
	if !ok || v != 1 {
		t.Fatalf("expected steal to return oldest (1), got %d ok=%v", v, ok)
	}
}

func TestPopEmptyReturnsFalse(t *testing.T) {
	d := New[int](8)
	if _, ok := d.PopBottom(); ok {
		t.Fatalf("expected PopBottom on empty deque to return false")
	}
	if _, ok := d.Steal(); ok {
		t.Fatalf("expected Steal on empty deque to return false")
	}
}

// Property 7 / Scenario E: owner pushes N handles, two thieves and the
// owner drain concurrently; the union equals the pushed multiset, no
// duplicates.
func TestLinearisabilityUnderConcurrentSteal(t *testing.T) {
	const n = 1000
	d := New[int](1024)
	for i := 0; i < n; i++ {
		d.PushBottom(i)
	}

	var mu sync.Mutex
	var got []int
	var recovered atomic.Int64
	var wg sync.WaitGroup
	done := make(chan struct{})

	stealer := func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			v, ok := d.Steal()
			if !ok {
				continue
			}
			mu.Lock()
			got = append(got, v)
			mu.Unlock()
			if recovered.Add(1) == n {
				close(done)
			}
		}
	}

	wg.Add(2)
	go stealer()
	go stealer()

	for recovered.Load() < n {
		v, ok := d.PopBottom()
		if !ok {
			select {
			case <-done:
			default:
				continue
			}
			break
		}
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
		if recovered.Add(1) == n {
			close(done)
		}
	}
	wg.Wait()

	if len(got) != n {
		t.Fatalf("expected %d total elements recovered, got %d", n, len(got))
	}
	sort.Ints(got)
	for i, v := range got {
		if v != i {
			t.Fatalf("expected multiset {0..%d}, found duplicate/missing at position %d: %d", n-1, i, v)
		}
	}
}
