package sparseset

import (
	"testing"

	"github.com/l1jgo/enginecore/internal/core/coreerr"
)

type position struct{ X, Y float32 }

func TestAddGetSetRemove(t *testing.T) {
	s := New[position](16)

	if err := s.Add(3, position{1, 2}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	v, err := s.Get(3)
	if err != nil || *v != (position{1, 2}) {
		t.Fatalf("Get: got %+v, err %v", v, err)
	}
	if err := s.Set(3, position{3, 4}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, _ = s.Get(3)
	if *v != (position{3, 4}) {
		t.Fatalf("expected updated value, got %+v", v)
	}

	s.Remove(3)
	if s.Has(3) {
		t.Fatalf("expected component removed")
	}
	if _, err := s.Get(3); err != coreerr.ErrComponentMissing {
		t.Fatalf("expected ErrComponentMissing, got %v", err)
	}
}

func TestAddExistingIsError(t *testing.T) {
	s := New[position](4)
	_ = s.Add(0, position{})
	if err := s.Add(0, position{}); err != coreerr.ErrComponentExists {
		t.Fatalf("expected ErrComponentExists, got %v", err)
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	s := New[position](4)
	s.Remove(0) // must not panic
}

func TestOutOfSpace(t *testing.T) {
	s := New[position](2)
	_ = s.Add(0, position{})
	_ = s.Add(1, position{})
	if err := s.Add(2, position{}); err != coreerr.ErrOutOfSpace {
		t.Fatalf("expected ErrOutOfSpace, got %v", err)
	}
}

// Property 3: SparseSet consistency under a mixed add/remove sequence.
func TestSparseSetConsistency(t *testing.T) {
	s := New[position](8)
	alive := map[uint32]bool{}

	ops := []struct {
		idx uint32
		add bool
	}{
		{0, true}, {1, true}, {2, true}, {1, false},
		{3, true}, {0, false}, {4, true}, {2, false},
	}
	for _, op := range ops {
		if op.add {
			if err := s.Add(op.idx, position{X: float32(op.idx)}); err == nil {
				alive[op.idx] = true
			}
		} else {
			s.Remove(op.idx)
			delete(alive, op.idx)
		}
		checkConsistency(t, s)
	}
	if int(s.Len()) != len(alive) {
		t.Fatalf("count mismatch: set says %d, expected %d", s.Len(), len(alive))
	}
	for idx := range alive {
		if !s.Has(idx) {
			t.Fatalf("expected idx %d to be alive", idx)
		}
	}
}

func checkConsistency(t *testing.T, s *Set[position]) {
	t.Helper()
	s.Each(func(idx uint32, v *position) {
		if s.sparse[idx] >= s.count {
			t.Fatalf("sparse[%d]=%d >= count %d", idx, s.sparse[idx], s.count)
		}
		if s.dense[s.sparse[idx]] != idx {
			t.Fatalf("dense[sparse[%d]] != %d", idx, idx)
		}
	})
}
