package eventclickhouse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrovigil/pkg/models"
)

func TestWriterInsertsJSONEachRow(t *testing.T) {
	var query string
	var rows []Row
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("query")
		assert.Equal(t, "soc", r.Header.Get("X-ClickHouse-User"))
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			var row Row
			assert.NoError(t, json.Unmarshal(sc.Bytes(), &row))
			rows = append(rows, row)
		}
	}))
	defer srv.Close()

	w, err := NewWriter(Config{URL: srv.URL, Database: "ics", Username: "soc"})
	require.NoError(t, err)

	prev := models.Phase1
	inc := models.Incident{ID: 9, SensorID: "W-05", Event: "Flow oscillation mirrors pressure phase", Severity: models.SeverityCritical, Status: models.StatusEscalated}
	err = w.WriteEvents(context.Background(), []*models.Event{
		{Type: models.EventPhase, Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), Phase: models.Phase2, Previous: &prev, Target: "W-05"},
		{Type: models.EventIncident, Phase: models.Phase2, Incident: &inc},
	})
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO `ics`.`hydrovigil_events` FORMAT JSONEachRow", query)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-01-02 03:04:05.000", rows[0].Timestamp)
	assert.Equal(t, "phase1", rows[0].Previous)
	assert.Equal(t, "phase2", rows[0].Phase)
	assert.Equal(t, int64(9), rows[1].IncidentID)
	assert.Equal(t, "critical", rows[1].Severity)
	assert.Equal(t, "Escalated", rows[1].Status)
}

func TestWriterReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Table doesn't exist", http.StatusNotFound)
	}))
	defer srv.Close()

	w, err := NewWriter(Config{URL: srv.URL})
	require.NoError(t, err)
	err = w.WriteEvents(context.Background(), []*models.Event{{Type: models.EventCue}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Table doesn't exist")
}

func TestQuoteIdentStripsBackticks(t *testing.T) {
	assert.Equal(t, "`events`", quoteIdent("ev`ents"))
	assert.Equal(t, "", quoteIdent(""))
}
