// Package system implements the per-frame ordered system scheduler,
// grounded directly on the teacher's internal/core/system/{system.go,
// runner.go} (Phase/System/Runner), generalized here from a fixed 7-phase
// enum to an ascending Order byte per SPEC_FULL.md §4.6.
package system

import (
	"sort"
	"time"
)

// System is the interface every per-frame callback implements.
type System interface {
	Update(dt time.Duration)
}

type entry struct {
	order byte
	sys   System
}

// Scheduler runs registered systems once per frame in ascending Order.
// No parallelism at this layer — a System that wants concurrency dispatches
// jobs from inside its own Update.
type Scheduler struct {
	entries []entry
	sorted  bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{entries: make([]entry, 0, 16)}
}

// Register appends s with the given order. Lower order runs first.
func (s *Scheduler) Register(sys System, order byte) {
	s.entries = append(s.entries, entry{order: order, sys: sys})
	s.sorted = false
}

// Run invokes every registered system once, in ascending order.
func (s *Scheduler) Run(dt time.Duration) {
	s.ensureSorted()
	for _, e := range s.entries {
		e.sys.Update(dt)
	}
}

func (s *Scheduler) ensureSorted() {
	if s.sorted {
		return
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].order < s.entries[j].order
	})
	s.sorted = true
}
