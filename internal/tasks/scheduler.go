package tasks

import (
	"sync"
	"time"
)

// Scheduler coalesces bursts of calls per key into one deferred call.
//
// Schedule replaces the pending payload for a key and restarts its quiet period. When the period
// elapses with no new call for that key, fire runs once with the latest payload, on the timer's goroutine.
type Scheduler[K comparable, P any] struct {
	quiet time.Duration
	fire  func(K, P)

	mu      sync.Mutex
	pending map[K]*pendingCall[P]
	gen     uint64
	stopped bool
}

type pendingCall[P any] struct {
	timer   *time.Timer
	payload P
	gen     uint64
}

// NewScheduler creates a Scheduler that calls fire after quiet has passed without a new call for a key.
func NewScheduler[K comparable, P any](quiet time.Duration, fire func(K, P)) *Scheduler[K, P] {
	return &Scheduler[K, P]{
		quiet:   quiet,
		fire:    fire,
		pending: make(map[K]*pendingCall[P]),
	}
}

// Schedule cancels any pending call for key and schedules payload in its place.
//
// A call for key that has already started firing is not affected; the new payload gets its own timer.
// After [Scheduler.Stop], Schedule does nothing.
func (s *Scheduler[K, P]) Schedule(key K, payload P) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
	}

	s.gen++
	gen := s.gen
	call := &pendingCall[P]{payload: payload, gen: gen}
	call.timer = time.AfterFunc(s.quiet, func() { s.expire(key, gen) })
	s.pending[key] = call
}

// expire fires the pending call for key if it is still generation gen.
func (s *Scheduler[K, P]) expire(key K, gen uint64) {
	s.mu.Lock()
	call, ok := s.pending[key]
	if !ok || call.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	s.fire(key, call.payload)
}

// Cancel drops the pending call for key, reporting whether one existed.
func (s *Scheduler[K, P]) Cancel(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	call, ok := s.pending[key]
	if ok {
		call.timer.Stop()
		delete(s.pending, key)
	}
	return ok
}

// Take removes the pending call for key and returns its payload without firing it.
func (s *Scheduler[K, P]) Take(key K) (P, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call, ok := s.pending[key]
	if !ok {
		var zero P
		return zero, false
	}
	call.timer.Stop()
	delete(s.pending, key)
	return call.payload, true
}

// Payload returns the payload waiting for key, if any.
func (s *Scheduler[K, P]) Payload(key K) (P, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if call, ok := s.pending[key]; ok {
		return call.payload, true
	}
	var zero P
	return zero, false
}

// Pending returns the number of keys with a scheduled call.
func (s *Scheduler[K, P]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush fires every pending call now, on the caller's goroutine, and clears the schedule.
func (s *Scheduler[K, P]) Flush() {
	s.mu.Lock()
	calls := s.pending
	s.pending = make(map[K]*pendingCall[P])
	for _, call := range calls {
		call.timer.Stop()
	}
	s.mu.Unlock()

	for key, call := range calls {
		s.fire(key, call.payload)
	}
}

// Stop cancels every pending call and rejects later ones.
func (s *Scheduler[K, P]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key, call := range s.pending {
		call.timer.Stop()
		delete(s.pending, key)
	}
}
