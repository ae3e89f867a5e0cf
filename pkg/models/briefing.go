package models

// SystemStatus is the header status label.
type SystemStatus string

const (
	StatusNormal       SystemStatus = "normal"
	StatusSuspicious   SystemStatus = "suspicious"
	StatusActiveAttack SystemStatus = "active_attack"
)

// AIBriefing is the narrative panel content for a phase.
type AIBriefing struct {
	Headline        string   `json:"headline"`
	Summary         string   `json:"summary"`
	Confidence      int      `json:"confidence"`
	ThreatLevel     string   `json:"threatLevel"`
	Signals         []string `json:"signals"`
	Recommendations []string `json:"recommendations"`
	Expanded        bool     `json:"expanded"`
}

// KPI is one dashboard card.
type KPI struct {
	Key      string  `json:"key"`
	Title    string  `json:"title"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
	Decimals int     `json:"decimals"`
	Delta    float64 `json:"delta"`
	Severity string  `json:"severity"`
}
