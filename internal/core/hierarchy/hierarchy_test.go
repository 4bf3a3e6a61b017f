package hierarchy

import "testing"

func collect(t *Tree, parent uint32) []uint32 {
	var out []uint32
	t.IterChildren(parent, func(idx uint32) { out = append(out, idx) })
	return out
}

func eq(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Scenario B from SPEC_FULL.md §8.
func TestReattachScenarioB(t *testing.T) {
	tr := New()
	tr.Grow(10)
	const p, pPrime, c1, c2, c3 = 0, 1, 2, 3, 4

	tr.Attach(c1, p)
	tr.Attach(c2, p)
	tr.Attach(c3, p)

	got := collect(tr, p)
	want := []uint32{c3, c2, c1}
	if !eq(got, want) {
		t.Fatalf("after attach: got %v want %v", got, want)
	}

	tr.Attach(c2, pPrime)

	got = collect(tr, p)
	want = []uint32{c3, c1}
	if !eq(got, want) {
		t.Fatalf("after reattach, p's children: got %v want %v", got, want)
	}

	got = collect(tr, pPrime)
	want = []uint32{c2}
	if !eq(got, want) {
		t.Fatalf("after reattach, p' children: got %v want %v", got, want)
	}
}

func TestSetRootDetaches(t *testing.T) {
	tr := New()
	tr.Grow(4)
	tr.Attach(1, 0)
	tr.SetRoot(1)
	if got := collect(tr, 0); len(got) != 0 {
		t.Fatalf("expected no children after SetRoot, got %v", got)
	}
	if tr.Parent(1) != Sentinel {
		t.Fatalf("expected sentinel parent after SetRoot")
	}
}
