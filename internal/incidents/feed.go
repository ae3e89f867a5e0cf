package incidents

import (
	"math/rand/v2"

	"hydrovigil/pkg/models"
)

// TargetBias is the chance a background incident during an attack implicates the target.
const TargetBias = 0.35

// Draft is an incident before the log assigns its id and timestamp.
type Draft struct {
	SensorID string
	Event    string
	Severity models.Severity
	Status   models.IncidentStatus
	Kind     models.IncidentKind
}

// Feed draws background incidents from the phase template pools.
type Feed struct {
	rng     *rand.Rand
	sensors []string
}

// NewFeed creates a feed using rng and the default sensor pool.
func NewFeed(rng *rand.Rand) *Feed {
	return &Feed{rng: rng, sensors: SensorPool}
}

// Background picks a template uniformly within the phase pool and attributes a sensor.
func (f *Feed) Background(phase models.Phase, target string) Draft {
	pool := Pool(phase)
	tpl := pool[f.rng.IntN(len(pool))]

	var sensor string
	if phase.Active() && target != "" && f.rng.Float64() < TargetBias {
		sensor = target
	} else {
		sensor = f.sensors[f.rng.IntN(len(f.sensors))]
	}

	return Draft{
		SensorID: sensor,
		Event:    tpl.Event,
		Severity: tpl.Severity,
		Status:   tpl.Status,
		Kind:     models.KindBackground,
	}
}

// PickTarget chooses an attack target different from previous when the pool allows.
func (f *Feed) PickTarget(previous string) string {
	candidates := make([]string, 0, len(f.sensors))
	for _, id := range f.sensors {
		if id != previous {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		candidates = f.sensors
	}
	return candidates[f.rng.IntN(len(candidates))]
}
