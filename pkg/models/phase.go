package models

import "fmt"

// Phase is a stage of the scripted attack scenario.
type Phase uint8

const (
	PhaseNormal Phase = iota
	Phase1
	Phase2
	Phase3

	// NumPhases sizes phase-indexed lookup tables.
	NumPhases = int(Phase3) + 1
)

var phaseNames = [NumPhases]string{
	PhaseNormal: "normal",
	Phase1:      "phase1",
	Phase2:      "phase2",
	Phase3:      "phase3",
}

// Normalize maps any unrecognized value to PhaseNormal.
func (p Phase) Normalize() Phase {
	if int(p) >= NumPhases {
		return PhaseNormal
	}
	return p
}

// Index returns the table index for p.
func (p Phase) Index() int {
	return int(p.Normalize())
}

func (p Phase) String() string {
	return phaseNames[p.Index()]
}

// Active reports whether an attack run is in progress.
func (p Phase) Active() bool {
	return p.Normalize() != PhaseNormal
}

// MarshalText encodes the phase by wire name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a wire name.
func (p *Phase) UnmarshalText(text []byte) error {
	v, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePhase resolves a wire name.
func ParsePhase(name string) (Phase, error) {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}
	return PhaseNormal, fmt.Errorf("unknown phase %q", name)
}
