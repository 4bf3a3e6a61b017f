package job

// semaphore is a counting semaphore built on a buffered channel: post
// enqueues one wake ticket, wait consumes one (blocking until available).
// Grounded on the channel-as-semaphore idiom used throughout the pack's
// concurrency code (e.g. lixenwraith-vi-fighter's scheduler gating), sized
// so a post never blocks the poster.
type semaphore struct {
	tickets chan struct{}
}

func newSemaphore(capacity int) *semaphore {
	return &semaphore{tickets: make(chan struct{}, capacity)}
}

// post wakes exactly one waiting worker. Non-blocking: if the ticket
// buffer is already full (more posts than workers could possibly consume
// before the next post), the extra ticket is dropped rather than blocking
// the poster, which only happens if wake-ups are already oversubscribed.
func (s *semaphore) post() {
	select {
	case s.tickets <- struct{}{}:
	default:
	}
}

func (s *semaphore) wait() {
	<-s.tickets
}
