package models

import "time"

// TelemetrySample is one synthetic sensor reading.
type TelemetrySample struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Pressure     float64   `json:"pressure"`
	Flow         float64   `json:"flow"`
	Level        float64   `json:"level"`
	AnomalyLevel float64   `json:"anomalyLevel"`
}

// Features returns the values sent to the prediction model.
func (s TelemetrySample) Features() []float64 {
	return []float64{s.Pressure, s.Flow, s.Level}
}
