package metrics

import (
	"time"

	"hydrovigil/pkg/models"
)

// Publish records an engine event. It satisfies engine.Sink.
func (r *Registry) Publish(ev models.Event) {
	r.EngineEventsTotal.WithLabelValues(string(ev.Type)).Inc()

	switch ev.Type {
	case models.EventPhase:
		if ev.Previous != nil {
			r.CurrentPhase.WithLabelValues(ev.Previous.String()).Set(0)
		}
		r.CurrentPhase.WithLabelValues(ev.Phase.String()).Set(1)
		if ev.Phase == models.Phase1 {
			r.AttackRunsTotal.Inc()
		}
	case models.EventTelemetry:
		if s := ev.Sample; s != nil {
			r.SensorReading.WithLabelValues("pressure").Set(s.Pressure)
			r.SensorReading.WithLabelValues("flow").Set(s.Flow)
			r.SensorReading.WithLabelValues("level").Set(s.Level)
			r.AnomalyLevel.Set(s.AnomalyLevel)
		}
	case models.EventIncident:
		if inc := ev.Incident; inc != nil {
			r.IncidentsTotal.WithLabelValues(string(inc.Severity), string(inc.Kind)).Inc()
		}
	case models.EventToast:
		r.ToastsShownTotal.Inc()
	}
}

// RecordHTTPRequest records an HTTP request
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncHTTPRequestsInFlight increments the in-flight gauge.
func (r *Registry) IncHTTPRequestsInFlight() { r.HTTPRequestsInFlight.Inc() }

// DecHTTPRequestsInFlight decrements the in-flight gauge.
func (r *Registry) DecHTTPRequestsInFlight() { r.HTTPRequestsInFlight.Dec() }

// EventsDropped counts export buffer overflow.
func (r *Registry) EventsDropped(n int) { r.ExportDroppedTotal.Add(float64(n)) }

// EventsExported counts written export events.
func (r *Registry) EventsExported(n int) { r.ExportedEventsTotal.Add(float64(n)) }

// ExportFailed counts a failed export write.
func (r *Registry) ExportFailed() { r.ExportFailuresTotal.Inc() }

// CommandHandled counts a remote command outcome.
func (r *Registry) CommandHandled(command, outcome string) {
	if command == "" {
		command = "none"
	}
	r.CommandsTotal.WithLabelValues(command, outcome).Inc()
}

// ClientConnected tracks websocket client count.
func (r *Registry) ClientConnected() { r.WebsocketClients.Inc() }

// ClientDisconnected tracks websocket client count.
func (r *Registry) ClientDisconnected() { r.WebsocketClients.Dec() }

// MessageDropped counts a websocket message that could not be queued.
func (r *Registry) MessageDropped() { r.WebsocketDroppedTotal.Inc() }

// RecordPrediction records one prediction call.
func (r *Registry) RecordPrediction(outcome string, duration time.Duration) {
	r.PredictionsTotal.WithLabelValues(outcome).Inc()
	r.PredictionDuration.Observe(duration.Seconds())
}
