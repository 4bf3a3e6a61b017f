package cmdbuf

import (
	"bytes"
	"testing"
)

func TestPushAndFlushOrdering(t *testing.T) {
	b := New(4, 64)
	_ = b.Push(Add, 1, 10, []byte("aaaa"))
	_ = b.Push(Set, 1, 10, []byte("bb"))
	_ = b.Push(Destroy, 0, 10, nil)

	if b.Len() != 3 {
		t.Fatalf("expected 3 commands, got %d", b.Len())
	}

	c0, p0 := b.At(0)
	if c0.Kind != Add || !bytes.Equal(p0, []byte("aaaa")) {
		t.Fatalf("command 0 mismatch: %+v %q", c0, p0)
	}
	c1, p1 := b.At(1)
	if c1.Kind != Set || !bytes.Equal(p1, []byte("bb")) {
		t.Fatalf("command 1 mismatch: %+v %q", c1, p1)
	}
	c2, p2 := b.At(2)
	if c2.Kind != Destroy || len(p2) != 0 {
		t.Fatalf("command 2 mismatch: %+v %q", c2, p2)
	}
}

func TestClearResetsCursors(t *testing.T) {
	b := New(4, 64)
	_ = b.Push(Add, 1, 0, []byte("x"))
	b.Clear()
	if b.Len() != 0 {
		t.Fatalf("expected empty buffer after Clear")
	}
	_ = b.Push(Add, 2, 0, []byte("y"))
	_, p := b.At(0)
	if string(p) != "y" {
		t.Fatalf("expected stage arena reused from offset 0, got %q", p)
	}
}

func TestOutOfSpaceCommands(t *testing.T) {
	b := New(1, 64)
	if err := b.Push(Add, 1, 0, nil); err != nil {
		t.Fatalf("first push: %v", err)
	}
	if err := b.Push(Add, 1, 0, nil); err == nil {
		t.Fatalf("expected ErrOutOfSpace once command capacity is hit")
	}
}

func TestOutOfSpaceStage(t *testing.T) {
	b := New(4, 2)
	if err := b.Push(Add, 1, 0, []byte("abc")); err == nil {
		t.Fatalf("expected ErrOutOfSpace when payload exceeds stage capacity")
	}
}
