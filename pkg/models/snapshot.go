package models

import "time"

// Snapshot is the read-only view handed to presentation clients.
type Snapshot struct {
	Timestamp           time.Time         `json:"timestamp"`
	Phase               Phase             `json:"phase"`
	PhaseLabel          string            `json:"phaseLabel"`
	SystemStatus        SystemStatus      `json:"systemStatus"`
	Severity            string            `json:"severity"`
	AttackTarget        string            `json:"attackTarget"`
	SimulationActive    bool              `json:"simulationActive"`
	FeedIntervalSeconds int               `json:"feedIntervalSeconds"`
	AnomalyCount        int               `json:"anomalyCount"`
	Telemetry           []TelemetrySample `json:"telemetry"`
	Incidents           []Incident        `json:"incidents"`
	Toast               *Toast            `json:"toast"`
	KPIs                []KPI             `json:"kpis"`
	Briefing            AIBriefing        `json:"briefing"`
}
