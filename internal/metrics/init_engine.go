package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEngineMetrics() {
	r.EngineEventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydrovigil_engine_events_total",
			Help: "Engine events published, by type",
		},
		[]string{"type"},
	)

	r.CurrentPhase = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hydrovigil_phase",
			Help: "1 for the current attack phase, 0 otherwise",
		},
		[]string{"phase"},
	)

	r.AttackRunsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hydrovigil_attack_runs_total",
			Help: "Scripted attack runs started",
		},
	)

	r.IncidentsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydrovigil_incidents_total",
			Help: "Incidents appended to the log, by severity and kind",
		},
		[]string{"severity", "kind"},
	)

	r.ToastsShownTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hydrovigil_toasts_shown_total",
			Help: "Critical toasts raised",
		},
	)

	r.SensorReading = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hydrovigil_sensor_reading",
			Help: "Latest simulated telemetry value",
		},
		[]string{"channel"},
	)

	r.AnomalyLevel = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "hydrovigil_anomaly_level",
			Help: "Anomaly level of the latest telemetry sample",
		},
	)
}
