package job

import (
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/l1jgo/enginecore/internal/core/deque"
)

// stealAttempts is K from SPEC_FULL.md §4.11.
const stealAttempts = 8

// submission is a job handed to a worker by some other goroutine — a job
// the worker itself dispatched to a fresh goroutine (SPEC_FULL.md §4.13),
// a different worker's task, or an external caller bootstrapping the first
// piece of work. It travels through Worker.submit rather than going
// straight at the deque, since a Go channel is safe for concurrent
// senders the way Deque.PushBottom is explicitly not (spec §4.10).
type submission struct {
	h    Handle
	high bool
}

// Worker owns one normal and one high-priority deque and runs the
// steal-or-idle scheduling loop described in SPEC_FULL.md §4.11.
//
// Each dispatched job runs on its own goroutine rather than being executed
// directly on the worker's loop goroutine. This is what lets a job's call
// to JobSystem.Wait park without stalling the worker's own scheduling loop
// — in the spec's fibre model that's achieved by switching back to the
// scheduler fibre; here it falls out for free because Go's runtime
// multiplexes goroutines onto GOMAXPROCS OS threads the same way fibres
// would have been multiplexed onto N worker threads (SPEC_FULL.md §4.13,
// §9). jobWG tracks in-flight job goroutines so Deinit can drain them.
//
// Those job goroutines are exactly the problem for the deque's single-owner
// PushBottom/PopBottom contract: a job dispatched onto worker w can itself
// spawn children back onto w's own queues, from a goroutine that is not
// w.run's. submit is w's inbox for that case — only run (via
// drainSubmissions) ever calls PushBottom, so the deque still sees pushes
// from exactly one goroutine no matter which goroutine called Run.
type Worker struct {
	id     int
	normal *deque.Deque[Handle]
	high   *deque.Deque[Handle]
	submit chan submission
	rng    *rand.Rand
	js     *JobSystem
	jobWG  sync.WaitGroup
}

func newWorker(id int, deqCap uint32, js *JobSystem) *Worker {
	return &Worker{
		id:     id,
		normal: deque.New[Handle](deqCap),
		high:   deque.New[Handle](deqCap),
		submit: make(chan submission, deqCap),
		rng:    rand.New(rand.NewSource(int64(id) + 1)),
		js:     js,
	}
}

// run is the worker's main loop. It exits once js.shouldTerminate is set
// and no more work is found.
func (w *Worker) run() {
	for {
		w.drainSubmissions()
		h, ok := w.nextJob()
		if !ok {
			if w.js.shouldTerminate.Load() {
				w.jobWG.Wait()
				return
			}
			w.js.sem.wait()
			continue
		}
		w.dispatchToGoroutine(h)
	}
}

// drainSubmissions moves every pending inbox entry onto this worker's own
// deques. Called only from run, so it is the sole PushBottom caller for
// w.normal/w.high — the single-owner contract holds regardless of which
// goroutine submitted the job.
func (w *Worker) drainSubmissions() {
	for {
		select {
		case s := <-w.submit:
			if s.high {
				w.high.PushBottom(s.h)
			} else {
				w.normal.PushBottom(s.h)
			}
		default:
			return
		}
	}
}

func (w *Worker) dispatchToGoroutine(h Handle) {
	w.jobWG.Add(1)
	go func() {
		defer w.jobWG.Done()
		defer func() {
			if r := recover(); r != nil && w.js.log != nil {
				w.js.log.Error("job task panicked", zap.Int("worker", w.id), zap.Any("recover", r))
			}
		}()
		w.js.executeJob(ctxForWorker(w), h)
	}()
}

// nextJob implements steps 2-3 of the worker loop: local pop, then random
// steal attempts, high priority checked before normal at every step.
func (w *Worker) nextJob() (Handle, bool) {
	if h, ok := w.high.PopBottom(); ok {
		return h, true
	}
	if h, ok := w.normal.PopBottom(); ok {
		return h, true
	}

	workers := w.js.workers
	n := len(workers)
	if n <= 1 {
		return Handle(0), false
	}
	for i := 0; i < stealAttempts; i++ {
		victim := workers[w.rng.Intn(n)]
		if victim == w {
			continue
		}
		if h, ok := victim.high.Steal(); ok {
			return h, true
		}
		if h, ok := victim.normal.Steal(); ok {
			return h, true
		}
	}
	return Handle(0), false
}
