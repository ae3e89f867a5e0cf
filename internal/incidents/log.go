package incidents

import (
	"time"

	"hydrovigil/pkg/models"
)

// LogCapacity is the number of incidents retained.
const LogCapacity = 12

// Log is a bounded, newest-first incident feed with monotonic ids.
// It is not safe for concurrent use; the engine guards it.
type Log struct {
	entries  []models.Incident
	capacity int
	lastID   int64
}

// NewLog creates an empty log.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = LogCapacity
	}
	return &Log{entries: make([]models.Incident, 0, capacity+1), capacity: capacity}
}

// NewSeededLog creates a log holding the startup incidents dated on day.
func NewSeededLog(capacity int, day time.Time) *Log {
	l := NewLog(capacity)
	seed := seedIncidents(day)
	if len(seed) > l.capacity {
		seed = seed[:l.capacity]
	}
	l.entries = append(l.entries, seed...)
	for _, inc := range seed {
		if inc.ID > l.lastID {
			l.lastID = inc.ID
		}
	}
	return l
}

// Append assigns the next id, prepends the incident and truncates to capacity.
func (l *Log) Append(d Draft, at time.Time) models.Incident {
	l.lastID++
	inc := models.Incident{
		ID:        l.lastID,
		Timestamp: at,
		SensorID:  d.SensorID,
		Event:     d.Event,
		Severity:  d.Severity,
		Status:    d.Status,
		Kind:      d.Kind,
	}
	l.entries = append(l.entries, models.Incident{})
	copy(l.entries[1:], l.entries[:len(l.entries)-1])
	l.entries[0] = inc
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
	return inc
}

// Len returns the number of retained incidents.
func (l *Log) Len() int {
	return len(l.entries)
}

// All returns a copy of the log, newest first.
func (l *Log) All() []models.Incident {
	out := make([]models.Incident, len(l.entries))
	copy(out, l.entries)
	return out
}
