package incidents

import (
	"time"

	"hydrovigil/pkg/models"
)

// SensorPool is the set of sensor ids incidents and attack runs draw from.
var SensorPool = []string{"P-11", "P-17", "P-23", "W-05", "GW-A2"}

// Template is the fixed part of a background incident.
type Template struct {
	Event    string
	Severity models.Severity
	Status   models.IncidentStatus
}

var backgroundPools = [models.NumPhases][]Template{
	models.PhaseNormal: {
		{"Routine telemetry checksum verified", models.SeverityLow, models.StatusCleared},
		{"Command audit completed with no drift", models.SeverityLow, models.StatusCleared},
		{"Edge gateway heartbeat latency normalized", models.SeverityLow, models.StatusMonitoring},
		{"Operator authentication profile matched", models.SeverityLow, models.StatusCleared},
	},
	models.Phase1: {
		{"Low-amplitude pressure variance flagged", models.SeverityMedium, models.StatusMonitoring},
		{"Flow baseline deviation exceeded guardband", models.SeverityMedium, models.StatusInvestigating},
		{"Telemetry correlation confidence reduced", models.SeverityMedium, models.StatusMonitoring},
	},
	models.Phase2: {
		{"Write-command burst detected on control segment", models.SeverityCritical, models.StatusInvestigating},
		{"Sustained hydraulic mismatch across paired sensors", models.SeverityCritical, models.StatusEscalated},
		{"Safety threshold override attempt intercepted", models.SeverityCritical, models.StatusInvestigating},
		{"Anomalous actuator response pattern confirmed", models.SeverityCritical, models.StatusEscalated},
	},
	models.Phase3: {
		{"Containment policy lock remains active", models.SeverityMedium, models.StatusMonitoring},
		{"Forensic capture pipeline synchronized", models.SeverityMedium, models.StatusInvestigating},
		{"Residual anomaly dampening in progress", models.SeverityMedium, models.StatusMonitoring},
	},
}

var feedCadence = [models.NumPhases]time.Duration{
	models.PhaseNormal: 15 * time.Second,
	models.Phase1:      9 * time.Second,
	models.Phase2:      6500 * time.Millisecond,
	models.Phase3:      8 * time.Second,
}

// Pool returns the background templates for phase.
func Pool(phase models.Phase) []Template {
	return backgroundPools[phase.Index()]
}

// Cadence returns the background feed interval for phase.
func Cadence(phase models.Phase) time.Duration {
	return feedCadence[phase.Index()]
}

// seedIncidents is the feed shown before any tick; ids decrease down the log.
func seedIncidents(day time.Time) []models.Incident {
	at := func(h, m, s int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, day.Location())
	}
	return []models.Incident{
		{ID: 4, Timestamp: at(8, 42, 15), SensorID: "P-11", Event: "Baseline packet profile restored", Severity: models.SeverityLow, Status: models.StatusCleared, Kind: models.KindSeed},
		{ID: 3, Timestamp: at(8, 39, 1), SensorID: "P-19", Event: "Unauthorized Modbus command rejected", Severity: models.SeverityMedium, Status: models.StatusContained, Kind: models.KindSeed},
		{ID: 2, Timestamp: at(8, 34, 42), SensorID: "W-05", Event: "Telemetry drift above threshold", Severity: models.SeverityMedium, Status: models.StatusMonitoring, Kind: models.KindSeed},
		{ID: 1, Timestamp: at(8, 30, 5), SensorID: "GW-A2", Event: "Credential replay attempt blocked", Severity: models.SeverityLow, Status: models.StatusCleared, Kind: models.KindSeed},
	}
}
