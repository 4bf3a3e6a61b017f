package handle

import "testing"

func TestCreateDestroyRoundTrip(t *testing.T) {
	p := NewPool(0)
	h, err := p.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !p.IsValid(h) {
		t.Fatalf("expected freshly created handle to be valid")
	}
	if err := p.Destroy(h); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if p.IsValid(h) {
		t.Fatalf("expected destroyed handle to be invalid")
	}
}

func TestGenerationMonotone(t *testing.T) {
	p := NewPool(0)
	h, _ := p.Create()
	idx := h.Index()
	if err := p.Destroy(h); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	var lastGen uint32
	for i := 0; i < 5; i++ {
		h, _ = p.Create()
		if h.Index() != idx {
			t.Fatalf("expected slot reuse at idx %d, got %d", idx, h.Index())
		}
		if i > 0 && h.Generation() != lastGen+1 {
			t.Fatalf("generation did not increase monotonically: got %d want %d", h.Generation(), lastGen+1)
		}
		lastGen = h.Generation()
		if err := p.Destroy(h); err != nil {
			t.Fatalf("Destroy: %v", err)
		}
	}
}

func TestStaleHandleInvalid(t *testing.T) {
	p := NewPool(0)
	h1, _ := p.Create()
	if err := p.Destroy(h1); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	h2, _ := p.Create()
	if h2.Index() != h1.Index() {
		t.Fatalf("expected slot reuse")
	}
	if p.IsValid(h1) {
		t.Fatalf("stale handle must not validate after slot reuse")
	}
	if !p.IsValid(h2) {
		t.Fatalf("fresh handle over reused slot must validate")
	}
}

func TestOutOfSpace(t *testing.T) {
	p := NewPool(2)
	if _, err := p.Create(); err != nil {
		t.Fatalf("Create 1: %v", err)
	}
	if _, err := p.Create(); err != nil {
		t.Fatalf("Create 2: %v", err)
	}
	if _, err := p.Create(); err == nil {
		t.Fatalf("expected ErrOutOfSpace on third create with cap 2")
	}
}

func TestDoubleDestroyIsInvalidHandle(t *testing.T) {
	p := NewPool(0)
	h, _ := p.Create()
	if err := p.Destroy(h); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := p.Destroy(h); err == nil {
		t.Fatalf("expected error destroying an already-destroyed handle")
	}
}
