package models

import (
	"encoding/json"
	"testing"
)

func TestPhaseWireNames(t *testing.T) {
	cases := map[Phase]string{
		PhaseNormal: "normal",
		Phase1:      "phase1",
		Phase2:      "phase2",
		Phase3:      "phase3",
	}
	for p, want := range cases {
		if got := p.String(); got != want {
			t.Fatalf("phase %d: expected %q, got %q", p, want, got)
		}
		parsed, err := ParsePhase(want)
		if err != nil || parsed != p {
			t.Fatalf("parse %q: got %v, %v", want, parsed, err)
		}
	}
}

func TestUnknownPhaseBehavesAsNormal(t *testing.T) {
	p := Phase(42)
	if p.Normalize() != PhaseNormal {
		t.Fatalf("expected normal, got %d", p.Normalize())
	}
	if p.String() != "normal" || p.Active() {
		t.Fatalf("unexpected behavior for unknown phase: %s active=%v", p, p.Active())
	}
	if _, err := ParsePhase("phase9"); err == nil {
		t.Fatalf("expected error for unknown name")
	}
}

func TestPhaseJSONInStruct(t *testing.T) {
	data, err := json.Marshal(Event{Type: EventPhase, Phase: Phase2})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Event
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Phase != Phase2 {
		t.Fatalf("expected phase2, got %s in %s", out.Phase, data)
	}
}
