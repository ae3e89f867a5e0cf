package models

import "time"

// Severity grades an incident.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityCritical Severity = "critical"
)

// IncidentStatus is the SOC handling state shown for an incident.
type IncidentStatus string

const (
	StatusCleared       IncidentStatus = "Cleared"
	StatusMonitoring    IncidentStatus = "Monitoring"
	StatusInvestigating IncidentStatus = "Investigating"
	StatusEscalated     IncidentStatus = "Escalated"
	StatusContained     IncidentStatus = "Contained"
)

// IncidentKind tells where an incident came from.
type IncidentKind string

const (
	KindSeed       IncidentKind = "seed"
	KindBackground IncidentKind = "background"
	KindMilestone  IncidentKind = "milestone"
)

// Incident is an entry of the rolling SOC feed.
type Incident struct {
	ID        int64          `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	SensorID  string         `json:"sensorId"`
	Event     string         `json:"event"`
	Severity  Severity       `json:"severity"`
	Status    IncidentStatus `json:"status"`
	Kind      IncidentKind   `json:"kind"`
}
