package derived

import "hydrovigil/pkg/models"

type phaseScore struct {
	nodes    float64
	sensors  float64
	threat   float64
	response float64
}

var phaseScores = [models.NumPhases]phaseScore{
	models.PhaseNormal: {nodes: 128, sensors: 412, threat: 24, response: 2.7},
	models.Phase1:      {nodes: 127, sensors: 406, threat: 55, response: 4.6},
	models.Phase2:      {nodes: 123, sensors: 391, threat: 91, response: 8.2},
	models.Phase3:      {nodes: 124, sensors: 394, threat: 94, response: 7.1},
}

type trendDeltas struct {
	nodes, sensors, threat, anomalies, response, confidence float64
}

var phaseDeltas = [models.NumPhases]trendDeltas{
	models.PhaseNormal: {nodes: -0.3, sensors: 0.4, threat: -1.4, anomalies: -0.7, response: -2.1, confidence: 0.6},
	models.Phase1:      {nodes: 1.2, sensors: -2.1, threat: 18.9, anomalies: 6.1, response: 4.1, confidence: -5.4},
	models.Phase2:      {nodes: 3.9, sensors: -4.7, threat: 31.6, anomalies: 15.4, response: 8.2, confidence: 6.2},
	models.Phase3:      {nodes: 3.9, sensors: -4.7, threat: 31.6, anomalies: 15.4, response: 8.2, confidence: 6.2},
}

// KPIs returns the six dashboard cards for phase.
func KPIs(phase models.Phase, anomalyCount, confidence int) []models.KPI {
	i := phase.Index()
	score, delta, sev := phaseScores[i], phaseDeltas[i], severityByPhase[i]
	return []models.KPI{
		{Key: "nodes", Title: "Network Nodes Online", Value: score.nodes, Delta: delta.nodes, Severity: sev},
		{Key: "sensors", Title: "Active Sensors", Value: score.sensors, Delta: delta.sensors, Severity: sev},
		{Key: "threat", Title: "Threat Score", Value: score.threat, Unit: "/100", Delta: delta.threat, Severity: sev},
		{Key: "anomalies", Title: "Anomalies (10 ticks)", Value: float64(anomalyCount), Delta: delta.anomalies, Severity: sev},
		{Key: "response", Title: "Mean Response Time", Value: score.response, Unit: "s", Decimals: 1, Delta: delta.response, Severity: sev},
		{Key: "confidence", Title: "AI Confidence", Value: float64(confidence), Unit: "%", Delta: delta.confidence, Severity: sev},
	}
}
