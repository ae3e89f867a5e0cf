package scheduler

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestScheduler() (*Scheduler, *ManualClock, *sync.Mutex) {
	clock := NewManualClock(epoch)
	var mu sync.Mutex
	return New(clock, &mu), clock, &mu
}

func TestAfterFiresOnceAtDeadline(t *testing.T) {
	s, clock, mu := newTestScheduler()
	fired := 0
	mu.Lock()
	s.After("once", 2*time.Second, func() { fired++ })
	mu.Unlock()

	clock.Advance(1999 * time.Millisecond)
	if fired != 0 {
		t.Fatalf("fired early")
	}
	clock.Advance(time.Millisecond)
	if fired != 1 {
		t.Fatalf("expected 1 fire, got %d", fired)
	}
	clock.Advance(10 * time.Second)
	if fired != 1 {
		t.Fatalf("expected one-shot, got %d fires", fired)
	}
	if s.Pending("once") {
		t.Fatalf("one-shot task still pending after firing")
	}
}

func TestEveryRepeatsUntilCanceled(t *testing.T) {
	s, clock, mu := newTestScheduler()
	fired := 0
	mu.Lock()
	s.Every("tick", time.Second, func() { fired++ })
	mu.Unlock()

	clock.Advance(3500 * time.Millisecond)
	if fired != 3 {
		t.Fatalf("expected 3 ticks, got %d", fired)
	}

	mu.Lock()
	s.Cancel("tick")
	mu.Unlock()
	clock.Advance(5 * time.Second)
	if fired != 3 {
		t.Fatalf("ticks continued after cancel: %d", fired)
	}
	if clock.Pending() != 0 {
		t.Fatalf("expected no clock timers, got %d", clock.Pending())
	}
}

func TestRearmReplacesPendingTask(t *testing.T) {
	s, clock, mu := newTestScheduler()
	var got []string
	mu.Lock()
	s.After("slot", time.Second, func() { got = append(got, "first") })
	s.After("slot", 3*time.Second, func() { got = append(got, "second") })
	mu.Unlock()

	clock.Advance(5 * time.Second)
	if len(got) != 1 || got[0] != "second" {
		t.Fatalf("expected only replacement to fire, got %v", got)
	}
}

func TestIndependentKeysFireIndependently(t *testing.T) {
	s, clock, mu := newTestScheduler()
	var order []Key
	mu.Lock()
	s.After("b", 5*time.Second, func() { order = append(order, "b") })
	s.After("a", 2*time.Second, func() { order = append(order, "a") })
	mu.Unlock()

	clock.Advance(10 * time.Second)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestCloseCancelsEverythingAndIgnoresNewTasks(t *testing.T) {
	s, clock, mu := newTestScheduler()
	fired := 0
	mu.Lock()
	s.Every("tick", time.Second, func() { fired++ })
	s.After("once", time.Second, func() { fired++ })
	s.Close()
	s.After("late", time.Second, func() { fired++ })
	keys := s.Keys()
	mu.Unlock()

	clock.Advance(time.Minute)
	if fired != 0 {
		t.Fatalf("expected no fires after close, got %d", fired)
	}
	if len(keys) != 0 {
		t.Fatalf("expected no keys after close, got %v", keys)
	}
}

func TestCallbackCanRearmItsOwnKey(t *testing.T) {
	s, clock, mu := newTestScheduler()
	fired := 0
	var step func()
	step = func() {
		fired++
		if fired < 3 {
			s.After("chain", time.Second, step)
		}
	}
	mu.Lock()
	s.After("chain", time.Second, step)
	mu.Unlock()

	clock.Advance(10 * time.Second)
	if fired != 3 {
		t.Fatalf("expected chain of 3, got %d", fired)
	}
}

func TestStaleFireIsDiscarded(t *testing.T) {
	s, _, mu := newTestScheduler()
	fired := 0
	mu.Lock()
	s.After("slot", time.Second, func() { fired++ })
	stale := s.tasks["slot"].id
	s.Cancel("slot")
	mu.Unlock()

	// Simulates a real timer that fired just before Cancel took effect.
	s.fire("slot", stale)
	if fired != 0 {
		t.Fatalf("stale callback ran")
	}
}

func TestRealClockAfterFunc(t *testing.T) {
	var mu sync.Mutex
	s := New(RealClock(), &mu)
	done := make(chan struct{})
	mu.Lock()
	s.After("real", 10*time.Millisecond, func() { close(done) })
	mu.Unlock()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("real clock task never fired")
	}
}
