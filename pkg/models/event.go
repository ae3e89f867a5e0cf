package models

import "time"

// EventType names an engine state change.
type EventType string

const (
	EventPhase        EventType = "phase"
	EventTelemetry    EventType = "telemetry"
	EventIncident     EventType = "incident"
	EventToast        EventType = "toast"
	EventToastCleared EventType = "toast_cleared"
	EventCue          EventType = "cue"
)

// Event is published to sinks on every engine state change.
type Event struct {
	Type      EventType        `json:"type"`
	Timestamp time.Time        `json:"ts"`
	Phase     Phase            `json:"phase"`
	Previous  *Phase           `json:"previous,omitempty"`
	Target    string           `json:"target,omitempty"`
	Sample    *TelemetrySample `json:"sample,omitempty"`
	Incident  *Incident        `json:"incident,omitempty"`
	Toast     *Toast           `json:"toast,omitempty"`
	Cue       *Cue             `json:"cue,omitempty"`
}
