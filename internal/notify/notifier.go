// Package notify keeps at most one live toast and expires it after a fixed TTL.
package notify

import (
	"time"

	"hydrovigil/internal/scheduler"
	"hydrovigil/pkg/models"
)

// DefaultTTL is how long a toast stays up.
const DefaultTTL = 4600 * time.Millisecond

// ExpireKey is the scheduler key of the expiry timer.
const ExpireKey scheduler.Key = "toast.expire"

// Notifier shares its owner's scheduler and lock.
type Notifier struct {
	sched    *scheduler.Scheduler
	active   *models.Toast
	onChange func(shown *models.Toast, cleared *models.Toast)
}

// New creates a notifier. onChange is called with the new toast when one is shown
// and with the removed toast when it is dismissed or expires.
func New(sched *scheduler.Scheduler, onChange func(shown, cleared *models.Toast)) *Notifier {
	return &Notifier{sched: sched, onChange: onChange}
}

// Show makes t the live toast, replacing any current one and its expiry.
func (n *Notifier) Show(t models.Toast, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := n.sched.Now()
	t.CreatedAt = now
	t.ExpiresAt = now.Add(ttl)

	n.sched.Cancel(ExpireKey)
	if n.active != nil {
		n.emit(nil, n.active)
	}
	n.active = &t
	n.emit(n.active, nil)
	n.sched.After(ExpireKey, ttl, n.Dismiss)
}

// Dismiss removes the live toast. Calling it with no toast up does nothing.
func (n *Notifier) Dismiss() {
	n.sched.Cancel(ExpireKey)
	if n.active == nil {
		return
	}
	cleared := n.active
	n.active = nil
	n.emit(nil, cleared)
}

// Active returns a copy of the live toast, or nil.
func (n *Notifier) Active() *models.Toast {
	if n.active == nil {
		return nil
	}
	t := *n.active
	return &t
}

func (n *Notifier) emit(shown, cleared *models.Toast) {
	if n.onChange == nil {
		return
	}
	if shown != nil {
		c := *shown
		shown = &c
	}
	if cleared != nil {
		c := *cleared
		cleared = &c
	}
	n.onChange(shown, cleared)
}
