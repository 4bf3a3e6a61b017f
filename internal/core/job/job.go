// Package job implements the fixed-pool, work-stealing job system described
// in SPEC_FULL.md §4.11/§4.12/§4.13. No example repo in the pack implements
// a work-stealing job scheduler; the job-pool/free-list/completion-tree
// logic is authored directly from the spec. The concurrency idioms around
// it — atomic lifecycle state, a CAS free list, a panic-recovering launch
// helper, sync.WaitGroup/sync.Once shutdown — are grounded on
// lixenwraith-vi-fighter/engine/clock_scheduler.go and
// lixenwraith-vi-fighter/core/crash_handler.go's Go() helper.
//
// Go has no stackful-fibre primitive. Per SPEC_FULL.md §4.13/§9, a job
// executes on its own goroutine rather than a freshly created fibre;
// JobSystem.Wait parks that goroutine on a channel instead of switching
// fibre context. Because a parked goroutine is resumed directly by the Go
// runtime once its channel is signalled, the spec's worker-loop "ready
// fibre queue" step has no work left to do in this realization — finishJob
// wakes a waiter by signalling its channel directly, and the Go scheduler
// takes it from there; Worker keeps no ready queue.
package job

import (
	"context"
	"sync/atomic"

	"github.com/l1jgo/enginecore/internal/core/handle"
)

// Handle identifies a Job the same way handle.Handle identifies an entity:
// a 32-bit index plus a 32-bit generation, valid iff the pool slot's
// current generation matches.
type Handle = handle.Handle

// Fn is the task a Job runs. ctx carries the current *Worker (via
// WorkerFromContext) when running on a worker goroutine; for a job run
// inline by a non-worker caller, WorkerFromContext(ctx) returns nil. This
// is the Go realization of the spec's thread-local worker_id==0 sentinel —
// Go has no goroutine-local storage, so the worker identity travels
// explicitly through context.Context instead.
type Fn func(ctx context.Context, j *Job)

type workerCtxKey struct{}

// WithWorker returns a context carrying w, used internally by the
// JobSystem before invoking a job's task on a worker goroutine.
func WithWorker(ctx context.Context, w *Worker) context.Context {
	return context.WithValue(ctx, workerCtxKey{}, w)
}

// WorkerFromContext returns the *Worker stored in ctx, or nil if ctx was
// not produced by a worker goroutine.
func WorkerFromContext(ctx context.Context) *Worker {
	w, _ := ctx.Value(workerCtxKey{}).(*Worker)
	return w
}

// payloadSize is the fixed inline payload capacity, matching SPEC_FULL.md
// §3's 64-byte Job.Data.
const payloadSize = 64

// waiterNode is one entry of a Job's lock-free LIFO waiter list: a parked
// goroutine's resume channel, linked via CAS.
type waiterNode struct {
	resume chan struct{}
	next   *waiterNode
}

// Job is the fixed-size task record. Sized close to the spec's 128 bytes;
// Go's struct layout does not let us hit that exactly without unsafe
// padding tricks that would not survive a GC-visible pointer field
// (TaskFn, WaitersHead), so this is "close to 128 bytes" rather than
// exactly; the struct carries no padding field.
type Job struct {
	TaskFn      Fn
	Parent      Handle
	Unfinished  atomic.Int32
	Generation  uint32
	Index       uint32
	WaitersHead atomic.Pointer[waiterNode]
	Data        [payloadSize]byte
}

// IsComplete reports whether the job's completion counter has reached zero.
func (j *Job) IsComplete() bool {
	return j.Unfinished.Load() == 0
}
