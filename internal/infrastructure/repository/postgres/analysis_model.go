package postgres

import "time"

type analysisTableModel struct {
	MatchID            string    `db:"match_id"`
	UnderThresholdProb float64   `db:"under_threshold_probability"`
	CurrentOdds        float64   `db:"current_odds"`
	RecommendedOdds    float64   `db:"recommended_odds"`
	EVPercentage       float64   `db:"ev_percentage"`
	Recommendation     string    `db:"recommendation"`
	ConfidenceLevel    string    `db:"confidence_level"`
	Rating             int       `db:"rating"`
	UpdatedAt          time.Time `db:"updated_at"`
}
