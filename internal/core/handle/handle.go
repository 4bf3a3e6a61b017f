// Package handle implements the generation-tagged slot allocator shared by
// entity and job identity. It is the Go realization of the spec's
// HandlePool: O(1) create/destroy/validate over a fixed-capacity slot array.
package handle

import (
	"math"

	"github.com/l1jgo/enginecore/internal/core/coreerr"
)

// Handle packs a 32-bit index in the low bits and a 32-bit generation in the
// high bits, mirroring the teacher's EntityID layout. Widened from the
// original 24-bit index / 8-bit generation packing to remove the 256-wrap
// hazard for long-lived slots (see SPEC_FULL.md §9).
type Handle uint64

// Zero is never returned by Create; it is reserved for "no handle".
const Zero Handle = 0

func New(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
func (h Handle) IsZero() bool       { return h == Zero }

// ScriptPacked returns the 32-bit (gen<<24)|idx form used at the script
// boundary (SPEC_FULL.md §6). Callers must ensure index fits 24 bits and
// generation fits 8 bits; this is a lossy projection used only for the
// script-facing integer form.
func (h Handle) ScriptPacked() uint32 {
	return (h.Generation()&0xFF)<<24 | h.Index()&0x00FFFFFF
}

// Pool is a generation-tagged slot allocator with a LIFO free stack, fixed
// at a maximum capacity.
type Pool struct {
	cap         uint32
	generations []uint32
	alive       []bool
	free        []uint32
	nextIndex   uint32
}

// NewPool constructs a pool that will never allocate more than cap live
// slots at once. cap == 0 means unbounded (grows as needed).
func NewPool(cap uint32) *Pool {
	return &Pool{
		cap:         cap,
		generations: make([]uint32, 0, 1024),
		alive:       make([]bool, 0, 1024),
		free:        make([]uint32, 0, 256),
	}
}

// Create allocates a handle, amortised O(1).
func (p *Pool) Create() (Handle, error) {
	if len(p.free) > 0 {
		idx := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		p.alive[idx] = true
		return New(idx, p.generations[idx]), nil
	}
	if p.cap != 0 && p.nextIndex >= p.cap {
		return Zero, coreerr.ErrOutOfSpace
	}
	idx := p.nextIndex
	p.nextIndex++
	p.generations = append(p.generations, 1)
	p.alive = append(p.alive, true)
	return New(idx, p.generations[idx]), nil
}

// IsValid reports whether h refers to a currently alive slot with a
// matching generation.
func (p *Pool) IsValid(h Handle) bool {
	idx := h.Index()
	if idx >= p.nextIndex {
		return false
	}
	return p.alive[idx] && p.generations[idx] == h.Generation()
}

// Destroy invalidates h, bumping its slot's generation and returning the
// slot to the free stack. Returns ErrInvalidHandle if h is already stale.
func (p *Pool) Destroy(h Handle) error {
	idx := h.Index()
	if idx >= p.nextIndex || !p.alive[idx] || p.generations[idx] != h.Generation() {
		return coreerr.ErrInvalidHandle
	}
	p.alive[idx] = false
	if p.generations[idx] == math.MaxUint32 {
		p.generations[idx] = 1
	} else {
		p.generations[idx]++
	}
	p.free = append(p.free, idx)
	return nil
}

// HandleFromIndex reconstructs the current handle for a live index, used by
// iteration paths that only carry raw indices internally.
func (p *Pool) HandleFromIndex(idx uint32) Handle {
	return New(idx, p.generations[idx])
}

// Len returns the number of slots ever allocated (alive + freed), i.e. the
// current high-water mark.
func (p *Pool) Len() uint32 { return p.nextIndex }
