package telemetry

import (
	"time"

	"hydrovigil/pkg/models"
)

// Capacity is the number of samples retained.
const Capacity = 36

// History is a bounded, oldest-first window of samples. It is not safe for
// concurrent use; the engine guards it.
type History struct {
	buffer   []models.TelemetrySample
	capacity int
}

// NewHistory creates an empty history holding up to capacity samples.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = Capacity
	}
	return &History{
		buffer:   make([]models.TelemetrySample, 0, capacity),
		capacity: capacity,
	}
}

// Seed replaces the window with samples 0..capacity-1 generated for phase.
func (h *History) Seed(g *Generator, phase models.Phase, at time.Time) {
	h.buffer = h.buffer[:0]
	for i := 0; i < h.capacity; i++ {
		h.buffer = append(h.buffer, g.Sample(int64(i), phase, at))
	}
}

// Add appends a sample and evicts the oldest beyond capacity.
func (h *History) Add(s models.TelemetrySample) {
	if len(h.buffer) >= h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:len(h.buffer)-1]
	}
	h.buffer = append(h.buffer, s)
}

// NextIndex is the sequence index of the next sample.
func (h *History) NextIndex() int64 {
	if len(h.buffer) == 0 {
		return 0
	}
	return h.buffer[len(h.buffer)-1].ID + 1
}

// Len returns the number of retained samples.
func (h *History) Len() int {
	return len(h.buffer)
}

// Recent returns a copy of the newest count samples, oldest first.
func (h *History) Recent(count int) []models.TelemetrySample {
	if count <= 0 || count > len(h.buffer) {
		count = len(h.buffer)
	}
	out := make([]models.TelemetrySample, count)
	copy(out, h.buffer[len(h.buffer)-count:])
	return out
}

// All returns a copy of the window, oldest first.
func (h *History) All() []models.TelemetrySample {
	return h.Recent(0)
}
