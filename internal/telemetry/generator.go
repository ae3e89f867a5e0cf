package telemetry

import (
	"math"
	"math/rand/v2"
	"time"

	"hydrovigil/pkg/models"
)

// Fixed anomaly levels per phase.
const (
	AnomalyNormal = 0.0
	AnomalyPhase1 = 0.35
	AnomalyPhase2 = 0.92
	AnomalyPhase3 = 0.66
)

// Generator produces synthetic pressure/flow/level readings whose shape depends on the phase.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator drawing jitter from rng.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// NewRand returns a PCG source for seed; seed 0 draws a random seed.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

func (g *Generator) jitter(scale float64) float64 {
	return (g.rng.Float64() - 0.5) * scale
}

// Sample builds the reading at index for phase.
func (g *Generator) Sample(index int64, phase models.Phase, at time.Time) models.TelemetrySample {
	i := float64(index)
	s := models.TelemetrySample{ID: index, Timestamp: at}

	switch phase.Normalize() {
	case models.Phase1:
		drift := (float64(index%12) / 11) * 7.5
		s.Pressure = 57 + math.Sin(i*1.1)*3.8 + g.jitter(1.8)
		s.Flow = 134 + drift + g.jitter(1.7)
		s.Level = 77 + math.Sin(i*0.9)*1.8 + g.jitter(1.2)
		s.AnomalyLevel = AnomalyPhase1
	case models.Phase2:
		spike := 0.0
		if index%4 == 0 {
			spike = 10
		}
		s.Pressure = 69 + math.Sin(i*1.6)*13 + spike + g.jitter(2.8)
		s.Flow = 166 + math.Cos(i*1.05)*10 + g.jitter(3.8)
		s.Level = 71 + math.Sin(i*2.1)*8.5 + g.jitter(3.1)
		s.AnomalyLevel = AnomalyPhase2
	case models.Phase3:
		s.Pressure = 64 + math.Sin(i*1.15)*7.2 + g.jitter(2.3)
		s.Flow = 154 + math.Cos(i*1.2)*6.2 + g.jitter(2.6)
		s.Level = 74 + math.Sin(i*1.6)*5.6 + g.jitter(2.1)
		s.AnomalyLevel = AnomalyPhase3
	default:
		s.Pressure = 58 + math.Sin(i/2.4)*1.8 + g.jitter(1.2)
		s.Flow = 132 + math.Cos(i/3.1)*2.1 + g.jitter(1.6)
		s.Level = 78 + math.Sin(i/3.6)*1.2 + g.jitter(0.9)
		s.AnomalyLevel = AnomalyNormal
	}
	return s
}
