package tasks

import (
	"sync"
	"testing"
	"time"

	tu "github.com/desertthunder/tdx/internal/testing"
)

type fired struct {
	key     int
	payload string
	at      time.Time
}

type recorder struct {
	mu    sync.Mutex
	calls []fired
}

func (r *recorder) fire(key int, payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fired{key: key, payload: payload, at: time.Now()})
}

func (r *recorder) forKey(key int) []fired {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []fired
	for _, c := range r.calls {
		if c.key == key {
			out = append(out, c)
		}
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestScheduler(t *testing.T) {
	t.Run("Coalesces Burst For One Key", func(t *testing.T) {
		rec := &recorder{}
		s := NewScheduler(40*time.Millisecond, rec.fire)

		for _, p := range []string{"a", "ab", "abc", "abcd", "abcde"} {
			s.Schedule(1, p)
		}

		tu.Eventually(t, time.Second, func() bool { return rec.count() == 1 }, "expected one fire")
		time.Sleep(100 * time.Millisecond)

		calls := rec.forKey(1)
		if len(calls) != 1 {
			t.Fatalf("expected exactly one fire, got %d", len(calls))
		}
		if calls[0].payload != "abcde" {
			t.Errorf("expected last payload 'abcde', got %s", calls[0].payload)
		}
	})

	t.Run("Restarts Quiet Period On Each Call", func(t *testing.T) {
		rec := &recorder{}
		quiet := 60 * time.Millisecond
		s := NewScheduler(quiet, rec.fire)

		start := time.Now()
		var last time.Time
		for i := 0; i < 4; i++ {
			last = time.Now()
			s.Schedule(1, "x")
			time.Sleep(30 * time.Millisecond)
		}

		tu.Eventually(t, time.Second, func() bool { return rec.count() == 1 }, "expected one fire")
		got := rec.forKey(1)[0].at
		if got.Before(last.Add(quiet)) {
			t.Errorf("fired %v after start, before the quiet period following the last call", got.Sub(start))
		}
	})

	t.Run("Keys Are Independent", func(t *testing.T) {
		rec := &recorder{}
		s := NewScheduler(50*time.Millisecond, rec.fire)

		s.Schedule(2, "b")
		var lastA time.Time
		for i := 0; i < 20; i++ {
			s.Schedule(1, "a")
			lastA = time.Now()
			time.Sleep(10 * time.Millisecond)
		}

		tu.Eventually(t, time.Second, func() bool { return len(rec.forKey(1)) == 1 }, "expected key 1 to fire")

		b := rec.forKey(2)
		if len(b) != 1 {
			t.Fatalf("expected key 2 to fire once, got %d", len(b))
		}
		if b[0].payload != "b" {
			t.Errorf("expected key 2 payload 'b', got %s", b[0].payload)
		}
		if !b[0].at.Before(lastA) {
			t.Error("expected key 2 to fire while key 1 was still being rescheduled")
		}
	})

	t.Run("Schedule After Fire Starts New Call", func(t *testing.T) {
		rec := &recorder{}
		s := NewScheduler(20*time.Millisecond, rec.fire)

		s.Schedule(1, "first")
		tu.Eventually(t, time.Second, func() bool { return rec.count() == 1 }, "expected first fire")

		s.Schedule(1, "second")
		tu.Eventually(t, time.Second, func() bool { return rec.count() == 2 }, "expected second fire")

		calls := rec.forKey(1)
		if calls[0].payload != "first" || calls[1].payload != "second" {
			t.Errorf("unexpected payloads: %+v", calls)
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		rec := &recorder{}
		s := NewScheduler(30*time.Millisecond, rec.fire)

		s.Schedule(1, "x")
		if !s.Cancel(1) {
			t.Error("expected Cancel to report a pending call")
		}
		if s.Cancel(1) {
			t.Error("expected second Cancel to report nothing pending")
		}

		time.Sleep(80 * time.Millisecond)
		if rec.count() != 0 {
			t.Errorf("expected canceled call not to fire, got %d", rec.count())
		}
	})

	t.Run("Take And Payload", func(t *testing.T) {
		rec := &recorder{}
		s := NewScheduler(30*time.Millisecond, rec.fire)

		s.Schedule(1, "x")
		s.Schedule(1, "x2")
		if p, ok := s.Payload(1); !ok || p != "x2" {
			t.Errorf("expected pending payload 'x2', got %q, %v", p, ok)
		}

		p, ok := s.Take(1)
		if !ok || p != "x2" {
			t.Fatalf("expected Take to return 'x2', got %q, %v", p, ok)
		}
		if _, ok := s.Take(1); ok {
			t.Error("expected second Take to find nothing")
		}
		if _, ok := s.Payload(1); ok {
			t.Error("expected no payload after Take")
		}

		time.Sleep(80 * time.Millisecond)
		if rec.count() != 0 {
			t.Errorf("expected taken call not to fire, got %d", rec.count())
		}
	})

	t.Run("Flush Fires Pending Once", func(t *testing.T) {
		rec := &recorder{}
		s := NewScheduler(time.Hour, rec.fire)

		s.Schedule(1, "a")
		s.Schedule(2, "b")
		s.Schedule(1, "a2")
		if s.Pending() != 2 {
			t.Fatalf("expected 2 pending, got %d", s.Pending())
		}

		s.Flush()

		if s.Pending() != 0 {
			t.Errorf("expected nothing pending after flush, got %d", s.Pending())
		}
		if got := rec.forKey(1); len(got) != 1 || got[0].payload != "a2" {
			t.Errorf("expected key 1 flushed once with 'a2', got %+v", got)
		}
		if got := rec.forKey(2); len(got) != 1 {
			t.Errorf("expected key 2 flushed once, got %+v", got)
		}
	})

	t.Run("Stop Cancels And Rejects", func(t *testing.T) {
		rec := &recorder{}
		s := NewScheduler(20*time.Millisecond, rec.fire)

		s.Schedule(1, "x")
		s.Stop()
		s.Schedule(2, "y")

		time.Sleep(60 * time.Millisecond)
		if rec.count() != 0 {
			t.Errorf("expected no fires after Stop, got %d", rec.count())
		}
		if s.Pending() != 0 {
			t.Errorf("expected nothing pending after Stop, got %d", s.Pending())
		}
	})
}
