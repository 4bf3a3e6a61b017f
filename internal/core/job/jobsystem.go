package job

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/l1jgo/enginecore/internal/core/coreerr"
	"github.com/l1jgo/enginecore/internal/core/handle"
)

// MaxJobs is the fixed pool size from SPEC_FULL.md §4.12.
const MaxJobs = 4096

const freeListEmpty = -1

// JobSystem owns the fixed job pool, its lock-free free list, and the
// worker pool. Internally thread-safe per SPEC_FULL.md §5.
type JobSystem struct {
	pool     []Job
	freeNext []int32
	freeHead atomic.Int32

	workers         []*Worker
	sem             *semaphore
	shouldTerminate atomic.Bool
	wg              sync.WaitGroup

	log *zap.Logger
}

// New constructs a JobSystem with numWorkers worker goroutines, each with a
// deque of the given capacity (must be a power of two), and starts them.
func New(numWorkers int, deqCap uint32, log *zap.Logger) *JobSystem {
	if numWorkers < 1 {
		numWorkers = 1
	}
	js := &JobSystem{
		pool:     make([]Job, MaxJobs),
		freeNext: make([]int32, MaxJobs),
		sem:      newSemaphore(MaxJobs),
		log:      log,
	}
	for i := 0; i < MaxJobs; i++ {
		if i == MaxJobs-1 {
			js.freeNext[i] = freeListEmpty
		} else {
			js.freeNext[i] = int32(i + 1)
		}
	}
	js.freeHead.Store(0)

	js.workers = make([]*Worker, numWorkers)
	for i := range js.workers {
		js.workers[i] = newWorker(i, deqCap, js)
	}
	js.wg.Add(numWorkers)
	for _, w := range js.workers {
		w := w
		go func() {
			defer js.wg.Done()
			defer js.recoverWorkerPanic(w)
			w.run()
		}()
	}
	return js
}

func (js *JobSystem) recoverWorkerPanic(w *Worker) {
	if r := recover(); r != nil && js.log != nil {
		js.log.Error("job worker panicked", zap.Int("worker", w.id), zap.Any("recover", r))
	}
}

func (js *JobSystem) alloc() (int32, bool) {
	for {
		head := js.freeHead.Load()
		if head == freeListEmpty {
			return 0, false
		}
		next := js.freeNext[head]
		if js.freeHead.CompareAndSwap(head, next) {
			return head, true
		}
	}
}

func (js *JobSystem) free(idx int32) {
	for {
		head := js.freeHead.Load()
		js.freeNext[idx] = head
		if js.freeHead.CompareAndSwap(head, idx) {
			return
		}
	}
}

// CreateJob allocates a job slot, writes task/parent/payload, and returns
// its handle. If parent is non-zero, the parent's Unfinished counter is
// incremented to account for the new child (SPEC_FULL.md §3).
func (js *JobSystem) CreateJob(task Fn, parent Handle, data []byte) (Handle, error) {
	if len(data) > payloadSize {
		return handle.Zero, coreerr.ErrPayloadTooLarge
	}
	idx, ok := js.alloc()
	if !ok {
		return handle.Zero, coreerr.ErrOutOfSpace
	}
	j := &js.pool[idx]
	j.TaskFn = task
	j.Parent = parent
	j.Unfinished.Store(1)
	j.Generation++
	j.Index = uint32(idx)
	j.WaitersHead.Store(nil)
	var buf [payloadSize]byte
	copy(buf[:], data)
	j.Data = buf

	h := handle.New(uint32(idx), j.Generation)

	if !parent.IsZero() {
		if pj, ok := js.jobAt(parent); ok {
			pj.Unfinished.Add(1)
		}
	}
	return h, nil
}

// jobAt returns the live job for h, or (nil, false) if h is stale.
func (js *JobSystem) jobAt(h Handle) (*Job, bool) {
	idx := h.Index()
	if idx >= uint32(len(js.pool)) {
		return nil, false
	}
	j := &js.pool[idx]
	if j.Generation != h.Generation() {
		return nil, false
	}
	return j, true
}

// Run executes h: inline on the caller's goroutine if ctx carries no
// *Worker, otherwise handed to the current worker's inbox for its own
// loop to push onto its normal deque.
func (js *JobSystem) Run(ctx context.Context, h Handle) {
	js.dispatch(ctx, h, false)
}

// RunHigh is Run's high-priority counterpart.
func (js *JobSystem) RunHigh(ctx context.Context, h Handle) {
	js.dispatch(ctx, h, true)
}

// dispatch never calls PushBottom itself. A worker's deque is pushed to
// and popped from exclusively by that worker's own run loop (see
// Worker.submit); dispatch only ever sends on a channel or executes
// inline, both safe from any goroutine.
func (js *JobSystem) dispatch(ctx context.Context, h Handle, high bool) {
	w := WorkerFromContext(ctx)
	if w == nil {
		js.executeJob(ctx, h)
		return
	}
	w.submit <- submission{h: h, high: high}
	js.sem.post()
}

// Wait blocks until h completes. A non-worker caller spins; a worker's job
// goroutine parks on a channel registered on the job's waiter list — the
// Go substitute for switching to the scheduler fibre (SPEC_FULL.md §4.13).
func (js *JobSystem) Wait(ctx context.Context, h Handle) {
	j, ok := js.jobAt(h)
	if !ok || j.IsComplete() {
		return
	}

	w := WorkerFromContext(ctx)
	if w == nil {
		for !j.IsComplete() {
			runtime.Gosched()
		}
		return
	}

	node := &waiterNode{resume: make(chan struct{})}
	for {
		head := j.WaitersHead.Load()
		node.next = head
		if j.WaitersHead.CompareAndSwap(head, node) {
			break
		}
	}
	// finishJob may have already swapped the list to nil (and drained it)
	// between our IsComplete check above and the CAS push; if so, this
	// node was never linked into a list anyone will drain, and parking
	// would hang. Re-check completion to catch exactly that race.
	if j.IsComplete() {
		return
	}
	<-node.resume
}

// finishJob decrements h's completion counter; at zero it wakes every
// waiter, propagates to the parent, and frees the slot.
func (js *JobSystem) finishJob(h Handle) {
	j, ok := js.jobAt(h)
	if !ok {
		return
	}
	if j.Unfinished.Add(-1) != 0 {
		return
	}

	head := j.WaitersHead.Swap(nil)
	for head != nil {
		close(head.resume)
		head = head.next
	}

	parent := j.Parent
	idx := int32(j.Index)
	if !parent.IsZero() {
		js.finishJob(parent)
	}
	js.free(idx)
}

// executeJob runs h's task if its generation is still current, then
// finishes it. Stale handles, including the handle of a job that has already
// completed, are silent no-ops.
func (js *JobSystem) executeJob(ctx context.Context, h Handle) {
	j, ok := js.jobAt(h)
	if !ok || j.IsComplete() {
		return
	}
	j.TaskFn(ctx, j)
	js.finishJob(h)
}

// ctxForWorker builds the context a worker passes to executeJob, carrying
// itself so nested Run/Wait calls see the right worker identity.
func ctxForWorker(w *Worker) context.Context {
	return WithWorker(context.Background(), w)
}

// Deinit signals every worker to terminate once its queues drain and waits
// for them to exit.
func (js *JobSystem) Deinit() {
	js.shouldTerminate.Store(true)
	for range js.workers {
		js.sem.post()
	}
	js.wg.Wait()
}
