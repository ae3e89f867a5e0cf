package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initFanoutMetrics() {
	r.WebsocketClients = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "hydrovigil_websocket_clients",
			Help: "Connected dashboard websocket clients",
		},
	)

	r.WebsocketDroppedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hydrovigil_websocket_dropped_total",
			Help: "Messages dropped because a client or the hub was too slow",
		},
	)

	r.ExportedEventsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hydrovigil_export_events_total",
			Help: "Events written by the export pipeline",
		},
	)

	r.ExportDroppedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hydrovigil_export_dropped_total",
			Help: "Events dropped because the export buffer was full",
		},
	)

	r.ExportFailuresTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hydrovigil_export_failures_total",
			Help: "Failed export write attempts",
		},
	)
}

func (r *Registry) initControlMetrics() {
	r.CommandsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydrovigil_commands_total",
			Help: "Remote commands handled, by command and outcome",
		},
		[]string{"command", "outcome"},
	)

	r.PredictionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydrovigil_predictions_total",
			Help: "Prediction service calls, by outcome",
		},
		[]string{"outcome"},
	)

	r.PredictionDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hydrovigil_prediction_duration_seconds",
			Help:    "Prediction service call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
}
