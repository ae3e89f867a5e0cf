// Package derived computes dashboard KPIs, the AI briefing and status labels
// from the phase, attack target and recent telemetry. Every function is pure.
package derived

import (
	"time"

	"hydrovigil/internal/incidents"
	"hydrovigil/pkg/models"
)

// Anomaly window parameters.
const (
	AnomalyWindow    = 10
	AnomalyThreshold = 0.6
)

var phaseLabels = [models.NumPhases]string{
	models.PhaseNormal: "System Baseline",
	models.Phase1:      "Phase 1 - Subtle Anomaly",
	models.Phase2:      "Phase 2 - Attack Escalation",
	models.Phase3:      "Phase 3 - AI Response & Containment",
}

var systemStatus = [models.NumPhases]models.SystemStatus{
	models.PhaseNormal: models.StatusNormal,
	models.Phase1:      models.StatusSuspicious,
	models.Phase2:      models.StatusActiveAttack,
	models.Phase3:      models.StatusActiveAttack,
}

var severityByPhase = [models.NumPhases]string{
	models.PhaseNormal: "stable",
	models.Phase1:      "warning",
	models.Phase2:      "critical",
	models.Phase3:      "critical",
}

// AnomalyCount counts samples in the last AnomalyWindow entries at or above AnomalyThreshold.
func AnomalyCount(samples []models.TelemetrySample) int {
	start := len(samples) - AnomalyWindow
	if start < 0 {
		start = 0
	}
	n := 0
	for _, s := range samples[start:] {
		if s.AnomalyLevel >= AnomalyThreshold {
			n++
		}
	}
	return n
}

// SystemStatus returns the header status for phase.
func SystemStatus(phase models.Phase) models.SystemStatus {
	return systemStatus[phase.Index()]
}

// Severity returns the KPI card severity for phase.
func Severity(phase models.Phase) string {
	return severityByPhase[phase.Index()]
}

// PhaseLabel returns the control panel label for phase.
func PhaseLabel(phase models.Phase) string {
	return phaseLabels[phase.Index()]
}

// Build fills the derived fields of a snapshot.
func Build(phase models.Phase, target string, telemetry []models.TelemetrySample, incidentLog []models.Incident, toast *models.Toast, now time.Time) models.Snapshot {
	phase = phase.Normalize()
	anomalies := AnomalyCount(telemetry)
	briefing := Briefing(phase, target)
	return models.Snapshot{
		Timestamp:           now,
		Phase:               phase,
		PhaseLabel:          PhaseLabel(phase),
		SystemStatus:        SystemStatus(phase),
		Severity:            Severity(phase),
		AttackTarget:        target,
		SimulationActive:    phase.Active(),
		FeedIntervalSeconds: int(incidents.Cadence(phase).Round(time.Second) / time.Second),
		AnomalyCount:        anomalies,
		Telemetry:           telemetry,
		Incidents:           incidentLog,
		Toast:               toast,
		KPIs:                KPIs(phase, anomalies, briefing.Confidence),
		Briefing:            briefing,
	}
}
