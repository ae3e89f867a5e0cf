package telemetry

import (
	"math"
	"testing"
	"time"

	"hydrovigil/pkg/models"
)

var at = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func TestAnomalyLevelPinnedPerPhase(t *testing.T) {
	g := NewGenerator(NewRand(7))
	want := map[models.Phase]float64{
		models.PhaseNormal: 0,
		models.Phase1:      0.35,
		models.Phase2:      0.92,
		models.Phase3:      0.66,
	}
	for phase, level := range want {
		for i := int64(0); i < 200; i++ {
			s := g.Sample(i, phase, at)
			if s.AnomalyLevel != level {
				t.Fatalf("phase %s index %d: expected anomaly %v, got %v", phase, i, level, s.AnomalyLevel)
			}
			if s.ID != i || !s.Timestamp.Equal(at) {
				t.Fatalf("unexpected identity fields: %+v", s)
			}
		}
	}
}

func TestUnknownPhaseFallsBackToNormalShape(t *testing.T) {
	a := NewGenerator(NewRand(11)).Sample(5, models.Phase(99), at)
	b := NewGenerator(NewRand(11)).Sample(5, models.PhaseNormal, at)
	if a != b {
		t.Fatalf("expected identical samples, got %+v vs %+v", a, b)
	}
}

func TestSameSeedSameSamples(t *testing.T) {
	g1 := NewGenerator(NewRand(3))
	g2 := NewGenerator(NewRand(3))
	for i := int64(0); i < 50; i++ {
		if g1.Sample(i, models.Phase2, at) != g2.Sample(i, models.Phase2, at) {
			t.Fatalf("seeded generators diverged at %d", i)
		}
	}
}

func TestSamplesStayWithinJitterBounds(t *testing.T) {
	g := NewGenerator(NewRand(5))
	for i := int64(0); i < 500; i++ {
		fi := float64(i)

		n := g.Sample(i, models.PhaseNormal, at)
		if d := math.Abs(n.Pressure - (58 + math.Sin(fi/2.4)*1.8)); d > 0.6 {
			t.Fatalf("normal pressure jitter %v too large at %d", d, i)
		}

		p1 := g.Sample(i, models.Phase1, at)
		drift := (float64(i%12) / 11) * 7.5
		if d := math.Abs(p1.Flow - (134 + drift)); d > 0.85 {
			t.Fatalf("phase1 flow off drift line by %v at %d", d, i)
		}

		p2 := g.Sample(i, models.Phase2, at)
		base := 69 + math.Sin(fi*1.6)*13
		if i%4 == 0 {
			base += 10
		}
		if d := math.Abs(p2.Pressure - base); d > 1.4 {
			t.Fatalf("phase2 pressure off spike line by %v at %d", d, i)
		}
	}
}

func TestPhase2VarianceExceedsPhase3(t *testing.T) {
	g := NewGenerator(NewRand(9))
	spread := func(phase models.Phase) float64 {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := int64(0); i < 100; i++ {
			p := g.Sample(i, phase, at).Pressure
			lo, hi = math.Min(lo, p), math.Max(hi, p)
		}
		return hi - lo
	}
	if spread(models.Phase2) <= spread(models.Phase3) {
		t.Fatalf("expected phase3 to be damped relative to phase2")
	}
}
