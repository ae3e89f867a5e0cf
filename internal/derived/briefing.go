package derived

import (
	"strings"

	"hydrovigil/pkg/models"
)

const targetToken = "{target}"

type briefingTemplate struct {
	headline        string
	summary         string
	confidence      int
	threatLevel     string
	signals         []string
	recommendations []string
	expanded        bool
}

// targetToken in signals and recommendations is replaced by the attack target.
var briefings = [models.NumPhases]briefingTemplate{
	models.PhaseNormal: {
		headline:    "System operating within expected cyber-physical baseline.",
		summary:     "Sensor streams and command telemetry remain aligned with historical behavior. No active intrusion chain detected.",
		confidence:  82,
		threatLevel: "Low",
		signals: []string{
			"Pressure and flow variance remain inside tolerance bands",
			"No unauthorized command writes observed",
			"Authentication profile matches operator schedule",
		},
		recommendations: []string{
			"Maintain segmented network policy enforcement",
			"Continue adaptive anomaly threshold calibration",
			"Run next integrity scan during low-demand window",
		},
	},
	models.Phase1: {
		headline:    "Irregular signal variance detected.",
		summary:     "Early-stage divergence has emerged in pressure and flow correlation. Behavioral model confidence indicates suspicious but not yet conclusive cyber-physical interference.",
		confidence:  68,
		threatLevel: "Guarded",
		signals: []string{
			"Pressure oscillation exceeds micro-variance tolerance",
			"Flow rate trending outside normal baseline envelope",
			"No maintenance operation scheduled for affected segment",
		},
		recommendations: []string{
			"Increase polling frequency for Sensor {target}",
			"Enable command-origin tracing for valve cluster",
			"Prepare containment playbook escalation",
		},
	},
	models.Phase2: {
		headline:    "Attack escalation detected across telemetry stream.",
		summary:     "Pressure spikes and sustained flow increase now align with hostile manipulation indicators. Water-level stability is degrading beyond safe operational guardrails.",
		confidence:  86,
		threatLevel: "Guarded",
		signals: []string{
			"Sharp pressure spikes beyond operational envelope",
			"Flow rate sustained above safety threshold",
			"Cross-sensor divergence in reservoir level trend on Sensor {target}",
		},
		recommendations: []string{
			"Lock remote writes for distribution controllers",
			"Segment suspicious field gateway traffic",
			"Dispatch rapid diagnostic verification",
		},
	},
	models.Phase3: {
		headline:    "AI Response and Containment Briefing",
		summary:     "Detected coordinated manipulation of flow-pressure correlation. Probability of malicious intrusion: 94%.",
		confidence:  94,
		threatLevel: "High",
		signals: []string{
			"Coordinated command burst pattern on Sensor {target} path",
			"Pressure-flow coupling broken by non-physical command rhythm",
			"Anomaly persistence despite baseline damping controls",
		},
		recommendations: []string{
			"Maintain controller lockout until forensic validation completes",
			"Rotate edge device credentials and close exposed sessions",
			"Continue containment telemetry audit for 15-minute window",
		},
		expanded: true,
	},
}

// Briefing returns the AI narrative for phase, naming target where the phase calls for it.
func Briefing(phase models.Phase, target string) models.AIBriefing {
	tpl := briefings[phase.Index()]
	return models.AIBriefing{
		Headline:        tpl.headline,
		Summary:         tpl.summary,
		Confidence:      tpl.confidence,
		ThreatLevel:     tpl.threatLevel,
		Signals:         interpolate(tpl.signals, target),
		Recommendations: interpolate(tpl.recommendations, target),
		Expanded:        tpl.expanded,
	}
}

func interpolate(lines []string, target string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.ReplaceAll(line, targetToken, target)
	}
	return out
}
