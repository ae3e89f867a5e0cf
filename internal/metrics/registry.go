package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hydrovigil/pkg/models"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Simulation
	EngineEventsTotal *prometheus.CounterVec
	CurrentPhase      *prometheus.GaugeVec
	AttackRunsTotal   prometheus.Counter
	IncidentsTotal    *prometheus.CounterVec
	ToastsShownTotal  prometheus.Counter
	SensorReading     *prometheus.GaugeVec
	AnomalyLevel      prometheus.Gauge

	// Fan-out
	WebsocketClients      prometheus.Gauge
	WebsocketDroppedTotal prometheus.Counter
	ExportedEventsTotal   prometheus.Counter
	ExportDroppedTotal    prometheus.Counter
	ExportFailuresTotal   prometheus.Counter

	// Control and prediction
	CommandsTotal      *prometheus.CounterVec
	PredictionsTotal   *prometheus.CounterVec
	PredictionDuration prometheus.Histogram

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric registered, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{registry: reg}
	r.initHTTPMetrics()
	r.initEngineMetrics()
	r.initFanoutMetrics()
	r.initControlMetrics()

	for i := 0; i < models.NumPhases; i++ {
		r.CurrentPhase.WithLabelValues(models.Phase(i).String()).Set(0)
	}
	r.CurrentPhase.WithLabelValues(models.PhaseNormal.String()).Set(1)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
