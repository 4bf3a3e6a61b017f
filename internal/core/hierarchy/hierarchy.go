// Package hierarchy implements the entity parent/child tree: three
// fixed-size index arrays addressed by entity slot index. There is no
// teacher analogue for this structure; it is authored directly from the
// attach algorithm described in SPEC_FULL.md §4.2.
package hierarchy

import "math"

// Sentinel marks "no parent" / "end of sibling list".
const Sentinel uint32 = math.MaxUint32

// Tree holds the parent/first-child/next-sibling arrays for a fixed number
// of entity slots. Grow is called by World as new entity slots come into
// existence.
type Tree struct {
	parent      []uint32
	firstChild  []uint32
	nextSibling []uint32
}

func New() *Tree {
	return &Tree{}
}

// Grow ensures the arrays cover index n-1, filling new slots with Sentinel.
func (t *Tree) Grow(n uint32) {
	for uint32(len(t.parent)) < n {
		t.parent = append(t.parent, Sentinel)
		t.firstChild = append(t.firstChild, Sentinel)
		t.nextSibling = append(t.nextSibling, Sentinel)
	}
}

// Parent returns the parent index of idx, or Sentinel if it is a root.
func (t *Tree) Parent(idx uint32) uint32 { return t.parent[idx] }

// SetRoot detaches child from its current parent (if any) and makes it a
// root node.
func (t *Tree) SetRoot(child uint32) {
	t.unlink(child)
	t.parent[child] = Sentinel
}

// Attach unlinks child from its current parent (if any), then prepends it
// to parentIdx's child list.
func (t *Tree) Attach(child, parentIdx uint32) {
	t.unlink(child)
	t.parent[child] = parentIdx
	t.nextSibling[child] = t.firstChild[parentIdx]
	t.firstChild[parentIdx] = child
}

// unlink removes child from its current parent's sibling list, if it has a
// parent. Linear scan of the sibling list, matching the spec's stated
// algorithm.
func (t *Tree) unlink(child uint32) {
	p := t.parent[child]
	if p == Sentinel {
		return
	}
	if t.firstChild[p] == child {
		t.firstChild[p] = t.nextSibling[child]
		t.nextSibling[child] = Sentinel
		return
	}
	prev := t.firstChild[p]
	for prev != Sentinel {
		next := t.nextSibling[prev]
		if next == child {
			t.nextSibling[prev] = t.nextSibling[child]
			t.nextSibling[child] = Sentinel
			return
		}
		prev = next
	}
}

// IterChildren visits every child of parentIdx in most-recently-attached
// first order (the natural order of a head-prepend singly linked list).
func (t *Tree) IterChildren(parentIdx uint32, visit func(idx uint32)) {
	c := t.firstChild[parentIdx]
	for c != Sentinel {
		visit(c)
		c = t.nextSibling[c]
	}
}
