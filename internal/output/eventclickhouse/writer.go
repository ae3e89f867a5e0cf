package eventclickhouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hydrovigil/internal/output/eventhttp"
	"hydrovigil/pkg/models"
)

// Config configures the ClickHouse HTTP writer.
type Config struct {
	URL      string
	Database string
	Table    string
	Username string
	Password string
	Timeout  time.Duration
	Headers  map[string]string
}

// Writer inserts engine events into ClickHouse via HTTP JSONEachRow.
type Writer struct {
	endpoint string
	headers  map[string]string
	client   *http.Client
}

// Row is the flat table layout of one event.
type Row struct {
	Timestamp    string  `json:"ts"`
	Type         string  `json:"type"`
	Phase        string  `json:"phase"`
	Previous     string  `json:"previous_phase"`
	Target       string  `json:"target"`
	SampleID     int64   `json:"sample_id"`
	Pressure     float64 `json:"pressure"`
	Flow         float64 `json:"flow"`
	Level        float64 `json:"level"`
	AnomalyLevel float64 `json:"anomaly_level"`
	IncidentID   int64   `json:"incident_id"`
	SensorID     string  `json:"sensor_id"`
	Message      string  `json:"message"`
	Severity     string  `json:"severity"`
	Status       string  `json:"status"`
}

// NewWriter creates a ClickHouse HTTP writer.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("clickhouse URL is empty")
	}
	if cfg.Database == "" {
		cfg.Database = "default"
	}
	if cfg.Table == "" {
		cfg.Table = "hydrovigil_events"
	}
	q := fmt.Sprintf("INSERT INTO %s.%s FORMAT JSONEachRow", quoteIdent(cfg.Database), quoteIdent(cfg.Table))
	base := strings.TrimRight(cfg.URL, "/")
	endpoint := base + "/?query=" + url.QueryEscape(q)

	headers := map[string]string{}
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if cfg.Username != "" {
		headers["X-ClickHouse-User"] = cfg.Username
	}
	if cfg.Password != "" {
		headers["X-ClickHouse-Key"] = cfg.Password
	}

	return &Writer{
		endpoint: endpoint,
		headers:  headers,
		client:   eventhttp.NewClient(cfg.Timeout),
	}, nil
}

// ToRow flattens an event.
func ToRow(ev *models.Event) Row {
	row := Row{
		Timestamp: ev.Timestamp.UTC().Format("2006-01-02 15:04:05.000"),
		Type:      string(ev.Type),
		Phase:     ev.Phase.String(),
		Target:    ev.Target,
	}
	if ev.Previous != nil {
		row.Previous = ev.Previous.String()
	}
	if s := ev.Sample; s != nil {
		row.SampleID = s.ID
		row.Pressure = s.Pressure
		row.Flow = s.Flow
		row.Level = s.Level
		row.AnomalyLevel = s.AnomalyLevel
	}
	if inc := ev.Incident; inc != nil {
		row.IncidentID = inc.ID
		row.SensorID = inc.SensorID
		row.Message = inc.Event
		row.Severity = string(inc.Severity)
		row.Status = string(inc.Status)
	}
	if t := ev.Toast; t != nil {
		row.Message = t.Title
	}
	return row
}

// WriteEvents inserts a batch of events as one JSONEachRow request.
func (w *Writer) WriteEvents(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, ev := range events {
		if err := enc.Encode(ToRow(ev)); err != nil {
			return fmt.Errorf("failed to marshal event row: %w", err)
		}
	}

	if err := eventhttp.Post(ctx, w.client, w.endpoint, "application/json", w.headers, &body); err != nil {
		return fmt.Errorf("clickhouse insert: %w", err)
	}
	return nil
}

// Close releases resources.
func (w *Writer) Close() error {
	w.client.CloseIdleConnections()
	return nil
}

func quoteIdent(v string) string {
	if v == "" {
		return ""
	}
	v = strings.ReplaceAll(v, "`", "")
	return "`" + v + "`"
}
