package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"hydrovigil/pkg/models"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.HTTPRequestsTotal == nil || r.EngineEventsTotal == nil || r.CommandsTotal == nil {
		t.Fatal("metrics not initialized")
	}
	families, err := r.registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("Prometheus registry not initialized")
	}
	if got := testutil.ToFloat64(r.CurrentPhase.WithLabelValues("normal")); got != 1 {
		t.Fatalf("normal phase gauge = %v, want 1", got)
	}
}

func TestPublishTracksPhase(t *testing.T) {
	r := NewRegistry()
	prev := models.PhaseNormal
	r.Publish(models.Event{Type: models.EventPhase, Phase: models.Phase1, Previous: &prev})

	if got := testutil.ToFloat64(r.CurrentPhase.WithLabelValues("normal")); got != 0 {
		t.Fatalf("normal gauge = %v, want 0", got)
	}
	if got := testutil.ToFloat64(r.CurrentPhase.WithLabelValues("phase1")); got != 1 {
		t.Fatalf("phase1 gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.AttackRunsTotal); got != 1 {
		t.Fatalf("attack runs = %v, want 1", got)
	}
}

func TestPublishTelemetryAndIncidents(t *testing.T) {
	r := NewRegistry()
	s := models.TelemetrySample{Pressure: 80, Flow: 150, Level: 64, AnomalyLevel: 0.92}
	r.Publish(models.Event{Type: models.EventTelemetry, Sample: &s})
	inc := models.Incident{Severity: models.SeverityCritical, Kind: models.KindMilestone}
	r.Publish(models.Event{Type: models.EventIncident, Incident: &inc})
	r.Publish(models.Event{Type: models.EventIncident, Incident: &inc})

	if got := testutil.ToFloat64(r.AnomalyLevel); got != 0.92 {
		t.Fatalf("anomaly gauge = %v", got)
	}
	if got := testutil.ToFloat64(r.SensorReading.WithLabelValues("flow")); got != 150 {
		t.Fatalf("flow gauge = %v", got)
	}

	counter, err := r.IncidentsTotal.GetMetricWithLabelValues("critical", "milestone")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("Counter value = %v, want 2", metric.Counter.GetValue())
	}
	if got := testutil.ToFloat64(r.EngineEventsTotal.WithLabelValues("incident")); got != 2 {
		t.Fatalf("incident events = %v", got)
	}
}

func TestObserverMethods(t *testing.T) {
	r := NewRegistry()
	r.EventsDropped(3)
	r.EventsExported(10)
	r.ExportFailed()
	r.CommandHandled("reset", "accepted")
	r.CommandHandled("", "invalid")
	r.ClientConnected()
	r.ClientConnected()
	r.ClientDisconnected()
	r.MessageDropped()
	r.RecordPrediction("ok", 20*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/snapshot", "200", time.Millisecond)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"dropped", testutil.ToFloat64(r.ExportDroppedTotal), 3},
		{"exported", testutil.ToFloat64(r.ExportedEventsTotal), 10},
		{"failures", testutil.ToFloat64(r.ExportFailuresTotal), 1},
		{"reset", testutil.ToFloat64(r.CommandsTotal.WithLabelValues("reset", "accepted")), 1},
		{"invalid", testutil.ToFloat64(r.CommandsTotal.WithLabelValues("none", "invalid")), 1},
		{"clients", testutil.ToFloat64(r.WebsocketClients), 1},
		{"ws dropped", testutil.ToFloat64(r.WebsocketDroppedTotal), 1},
		{"predictions", testutil.ToFloat64(r.PredictionsTotal.WithLabelValues("ok")), 1},
		{"http", testutil.ToFloat64(r.HTTPRequestsTotal.WithLabelValues("GET", "/api/snapshot", "200")), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.ToastsShownTotal.Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "hydrovigil_toasts_shown_total 1") {
		t.Fatalf("toast counter missing from exposition")
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Fatalf("runtime collector missing from exposition")
	}
}
