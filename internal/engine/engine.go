// Package engine owns the simulation state: the attack phase, telemetry window,
// incident log and live toast. All mutation goes through the engine's mutex,
// including every scheduled callback.
package engine

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"hydrovigil/internal/derived"
	"hydrovigil/internal/incidents"
	"hydrovigil/internal/logger"
	"hydrovigil/internal/notify"
	"hydrovigil/internal/scheduler"
	"hydrovigil/internal/telemetry"
	"hydrovigil/pkg/models"
)

// Scheduler keys, one per recurring or delayed activity.
const (
	KeyTick     scheduler.Key = "telemetry.tick"
	KeyFeed     scheduler.Key = "incidents.feed"
	KeyEscalate scheduler.Key = "phase.escalate"
	KeyContain  scheduler.Key = "phase.contain"
)

// SystemActor is the sensor id attributed to automated SOC actions.
const SystemActor = "SOC-AUTO"

// Default scenario timing.
const (
	DefaultTickInterval  = time.Second
	DefaultEscalateAfter = 2 * time.Second
	DefaultContainAfter  = 3600 * time.Millisecond
	DefaultInitialTarget = "P-23"
)

var alertCue = models.Cue{FrequencyHz: 740, DurationMs: 140, Gain: 0.03}

var engineLog = logger.For("engine")

// Config controls scenario timing and randomness.
type Config struct {
	TickInterval time.Duration
	// EscalateAfter is how long PHASE_1 lasts.
	EscalateAfter time.Duration
	// ContainAfter is how long PHASE_2 lasts, measured from the end of PHASE_1.
	ContainAfter  time.Duration
	ToastTTL      time.Duration
	Seed          int64
	InitialTarget string
}

func (c *Config) applyDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.EscalateAfter <= 0 {
		c.EscalateAfter = DefaultEscalateAfter
	}
	if c.ContainAfter <= 0 {
		c.ContainAfter = DefaultContainAfter
	}
	if c.ToastTTL <= 0 {
		c.ToastTTL = notify.DefaultTTL
	}
	if c.InitialTarget == "" {
		c.InitialTarget = DefaultInitialTarget
	}
}

// Sink receives every engine event. Publish is called with the engine lock held
// and must not block.
type Sink interface {
	Publish(ev models.Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev models.Event)

// Publish calls f.
func (f SinkFunc) Publish(ev models.Event) { f(ev) }

// Engine is the simulation phase engine.
type Engine struct {
	mu sync.Mutex

	cfg       Config
	sched     *scheduler.Scheduler
	rng       *rand.Rand
	generator *telemetry.Generator
	history   *telemetry.History
	feed      *incidents.Feed
	incidents *incidents.Log
	toasts    *notify.Notifier
	sinks     []Sink

	phase   models.Phase
	target  string
	started bool
	closed  bool
}

// New builds an engine with a seeded telemetry window and incident log.
// Nothing runs until Start.
func New(cfg Config, clock scheduler.Clock, sinks ...Sink) *Engine {
	cfg.applyDefaults()
	if clock == nil {
		clock = scheduler.RealClock()
	}

	e := &Engine{
		cfg:    cfg,
		rng:    telemetry.NewRand(cfg.Seed),
		sinks:  sinks,
		phase:  models.PhaseNormal,
		target: cfg.InitialTarget,
	}
	e.sched = scheduler.New(clock, &e.mu)
	e.generator = telemetry.NewGenerator(e.rng)
	e.feed = incidents.NewFeed(e.rng)

	now := clock.Now()
	e.history = telemetry.NewHistory(telemetry.Capacity)
	e.history.Seed(e.generator, models.PhaseNormal, now)
	e.incidents = incidents.NewSeededLog(incidents.LogCapacity, now)
	e.toasts = notify.New(e.sched, e.onToast)
	return e
}

// Start arms the telemetry tick and the background incident feed.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.closed {
		return
	}
	e.started = true
	e.armTick()
	e.armFeed()
	engineLog.Infof("Simulation started: tick=%s feed=%s target=%s", e.cfg.TickInterval, incidents.Cadence(e.phase), e.target)
}

// Close cancels every outstanding timer. Commands after Close are no-ops.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.sched.Close()
	engineLog.Infof("Simulation stopped")
}

// TriggerAttack starts a scripted attack run. It reports false and changes
// nothing unless the engine is in the normal phase.
func (e *Engine) TriggerAttack() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.phase != models.PhaseNormal {
		return false
	}

	e.target = e.feed.PickTarget(e.target)
	e.sched.Cancel(KeyEscalate, KeyContain)
	e.setPhase(models.Phase1)

	escalateAt := e.cfg.EscalateAfter
	containAt := e.cfg.EscalateAfter + e.cfg.ContainAfter
	e.sched.After(KeyEscalate, escalateAt, e.escalate)
	e.sched.After(KeyContain, containAt, e.contain)

	engineLog.Infof("Coordinated attack triggered: target=%s escalate_in=%s contain_in=%s", e.target, escalateAt, containAt)
	return true
}

// Reset cancels any run, returns to the normal phase, clears the toast and
// records a containment incident. It is valid from every phase.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	e.sched.Cancel(KeyEscalate, KeyContain)
	e.setPhase(models.PhaseNormal)
	e.toasts.Dismiss()
	e.pushIncident(incidents.Draft{
		SensorID: SystemActor,
		Event:    "Threat contained. System stabilized.",
		Severity: models.SeverityMedium,
		Status:   models.StatusCleared,
		Kind:     models.KindMilestone,
	})
	engineLog.Infof("System reset: target=%s", e.target)
}

func (e *Engine) escalate() {
	e.setPhase(models.Phase2)
	e.publish(models.Event{Type: models.EventCue, Cue: &alertCue})
	e.toasts.Show(models.Toast{
		ID:      uuid.NewString(),
		Title:   "Critical anomaly detected in Sensor " + e.target,
		Message: "Flow-pressure correlation breach has crossed critical thresholds.",
	}, e.cfg.ToastTTL)
	engineLog.Warnf("Attack escalation: target=%s", e.target)
}

func (e *Engine) contain() {
	e.setPhase(models.Phase3)
	e.pushIncident(incidents.Draft{
		SensorID: e.target,
		Event:    "Coordinated flow-pressure manipulation signature detected on Sensor " + e.target,
		Severity: models.SeverityCritical,
		Status:   models.StatusInvestigating,
		Kind:     models.KindMilestone,
	})
	engineLog.Warnf("Coordinated manipulation confirmed: target=%s", e.target)
}

// setPhase switches phase and re-arms the phase-dependent periodic tasks.
func (e *Engine) setPhase(next models.Phase) {
	prev := e.phase
	if prev == next {
		return
	}
	e.phase = next
	e.publish(models.Event{Type: models.EventPhase, Previous: &prev})
	if e.started {
		e.armTick()
		e.armFeed()
	}
	engineLog.Debugf("Phase %s -> %s", prev, next)
}

func (e *Engine) armTick() {
	e.sched.Every(KeyTick, e.cfg.TickInterval, e.tick)
}

func (e *Engine) armFeed() {
	e.sched.Every(KeyFeed, incidents.Cadence(e.phase), e.backgroundIncident)
}

func (e *Engine) tick() {
	s := e.generator.Sample(e.history.NextIndex(), e.phase, e.sched.Now())
	e.history.Add(s)
	e.publish(models.Event{Type: models.EventTelemetry, Sample: &s})
}

func (e *Engine) backgroundIncident() {
	e.pushIncident(e.feed.Background(e.phase, e.target))
}

func (e *Engine) pushIncident(d incidents.Draft) {
	inc := e.incidents.Append(d, e.sched.Now())
	e.publish(models.Event{Type: models.EventIncident, Incident: &inc})
}

func (e *Engine) onToast(shown, cleared *models.Toast) {
	if cleared != nil {
		e.publish(models.Event{Type: models.EventToastCleared, Toast: cleared})
	}
	if shown != nil {
		e.publish(models.Event{Type: models.EventToast, Toast: shown})
	}
}

func (e *Engine) publish(ev models.Event) {
	ev.Timestamp = e.sched.Now()
	ev.Phase = e.phase
	ev.Target = e.target
	for _, s := range e.sinks {
		s.Publish(ev)
	}
}

// Phase returns the current phase.
func (e *Engine) Phase() models.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Target returns the current attack target.
func (e *Engine) Target() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target
}

// Telemetry returns the newest count samples, oldest first; count <= 0 means all.
func (e *Engine) Telemetry(count int) []models.TelemetrySample {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Recent(count)
}

// Incidents returns the incident log, newest first.
func (e *Engine) Incidents() []models.Incident {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.incidents.All()
}

// Toast returns the live toast, or nil.
func (e *Engine) Toast() *models.Toast {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.toasts.Active()
}

// PendingTasks lists the armed scheduler keys.
func (e *Engine) PendingTasks() []scheduler.Key {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sched.Keys()
}

// Snapshot returns the full read-only dashboard view.
func (e *Engine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return derived.Build(e.phase, e.target, e.history.All(), e.incidents.All(), e.toasts.Active(), e.sched.Now())
}
