package alert

import "time"

const (
	TypeHighEV           = "high_ev"
	TypeEntryOpportunity = "entry_opportunity"
	TypeOddsChange       = "odds_change"
	TypeEVImprovement    = "ev_improvement"
	TypeHighProbability  = "high_probability"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Alert is an append-only notification emitted by the evaluator. The engine
// never mutates alerts after insert; marking them read belongs to consumers.
type Alert struct {
	ID        string
	MatchID   string
	AlertType string
	Title     string
	Message   string
	Priority  string
	IsRead    bool
	CreatedAt time.Time
}
