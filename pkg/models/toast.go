package models

import "time"

// Toast is a short-lived security alert banner.
type Toast struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Cue describes the audible alert played by dashboard clients.
type Cue struct {
	FrequencyHz float64 `json:"frequencyHz"`
	DurationMs  int     `json:"durationMs"`
	Gain        float64 `json:"gain"`
}
