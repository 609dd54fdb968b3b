package analysis

import "time"

const (
	RecommendationEnter   = "enter"
	RecommendationMonitor = "monitor"
	RecommendationAvoid   = "avoid"

	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Analysis is the current value snapshot for one match. Exactly one row per
// match; replaced on every cycle. The previous snapshot is only visible to the
// alert evaluator within the cycle that overwrites it.
type Analysis struct {
	MatchID            string
	UnderThresholdProb float64
	CurrentOdds        float64
	RecommendedOdds    float64
	EVPercentage       float64
	Recommendation     string
	ConfidenceLevel    string
	Rating             int
	UpdatedAt          time.Time
}
