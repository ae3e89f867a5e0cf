// Package scheduler runs cancelable delayed and periodic tasks keyed by purpose.
//
// A Scheduler is owned by a single state object and shares that object's lock:
// every method must be called with the guard held, and every callback runs with
// the guard held. A callback whose task was canceled or replaced before it could
// take the guard is discarded.
package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Key names the purpose of a task. At most one task is pending per key.
type Key string

type task struct {
	id     uint64
	timer  Timer
	period time.Duration
	fn     func()
}

// Scheduler tracks pending tasks by key.
type Scheduler struct {
	clock  Clock
	guard  sync.Locker
	tasks  map[Key]*task
	seq    uint64
	closed bool
}

// New creates a scheduler firing callbacks under guard.
func New(clock Clock, guard sync.Locker) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	return &Scheduler{
		clock: clock,
		guard: guard,
		tasks: make(map[Key]*task),
	}
}

// Now returns the scheduler clock's time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// After runs fn once after d, replacing any task pending under key.
func (s *Scheduler) After(key Key, d time.Duration, fn func()) {
	s.arm(key, d, 0, fn)
}

// Every runs fn each period, replacing any task pending under key.
// The first run happens one period from now.
func (s *Scheduler) Every(key Key, period time.Duration, fn func()) {
	if period <= 0 {
		s.Cancel(key)
		return
	}
	s.arm(key, period, period, fn)
}

func (s *Scheduler) arm(key Key, d, period time.Duration, fn func()) {
	s.Cancel(key)
	if s.closed {
		return
	}
	s.seq++
	t := &task{id: s.seq, period: period, fn: fn}
	id := t.id
	t.timer = s.clock.AfterFunc(d, func() { s.fire(key, id) })
	s.tasks[key] = t
}

func (s *Scheduler) fire(key Key, id uint64) {
	s.guard.Lock()
	defer s.guard.Unlock()

	t, ok := s.tasks[key]
	if !ok || t.id != id {
		return
	}
	if t.period > 0 {
		t.timer = s.clock.AfterFunc(t.period, func() { s.fire(key, id) })
	} else {
		delete(s.tasks, key)
	}
	t.fn()
}

// Cancel stops the tasks pending under keys.
func (s *Scheduler) Cancel(keys ...Key) {
	for _, key := range keys {
		if t, ok := s.tasks[key]; ok {
			t.timer.Stop()
			delete(s.tasks, key)
		}
	}
}

// CancelAll stops every pending task.
func (s *Scheduler) CancelAll() {
	for key, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, key)
	}
}

// Close cancels every task; later After/Every calls are ignored.
func (s *Scheduler) Close() {
	s.CancelAll()
	s.closed = true
}

// Pending reports whether a task is armed under key.
func (s *Scheduler) Pending(key Key) bool {
	_, ok := s.tasks[key]
	return ok
}

// Keys lists armed task keys in sorted order.
func (s *Scheduler) Keys() []Key {
	out := make([]Key, 0, len(s.tasks))
	for key := range s.tasks {
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
