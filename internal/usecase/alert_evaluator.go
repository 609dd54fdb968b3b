package usecase

import (
	"fmt"
	"math"

	"github.com/rmarchetti/livevalue/internal/domain/alert"
	"github.com/rmarchetti/livevalue/internal/domain/analysis"
)

// AlertConfig names the trigger thresholds for every alert rule.
type AlertConfig struct {
	HighEVThreshold          float64
	EntryEVThreshold         float64
	OddsSwingRatio           float64
	EVImprovementDelta       float64
	HighProbabilityThreshold float64
}

func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		HighEVThreshold:          10,
		EntryEVThreshold:         5,
		OddsSwingRatio:           0.05,
		EVImprovementDelta:       3,
		HighProbabilityThreshold: 85,
	}
}

func (c AlertConfig) Validate() error {
	if c.HighEVThreshold <= 0 || c.EntryEVThreshold <= 0 {
		return ErrConfiguration
	}
	if c.OddsSwingRatio <= 0 || c.EVImprovementDelta <= 0 {
		return ErrConfiguration
	}
	if c.HighProbabilityThreshold <= 0 || c.HighProbabilityThreshold > 100 {
		return ErrConfiguration
	}
	return nil
}

// boundaryEpsilon absorbs float64 representation noise in the diff rules: a
// movement of exactly the configured threshold must not fire.
const boundaryEpsilon = 1e-9

// AlertEvaluator diffs the current value snapshot against the previous one
// and emits alerts. Rules are independent; one match may trigger several in a
// single cycle, and recurring conditions produce fresh rows each cycle.
type AlertEvaluator struct {
	cfg AlertConfig
}

func NewAlertEvaluator(cfg AlertConfig) (*AlertEvaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &AlertEvaluator{cfg: cfg}, nil
}

func (e *AlertEvaluator) Evaluate(matchName string, current analysis.Analysis, previous *analysis.Analysis) []alert.Alert {
	var alerts []alert.Alert

	if current.EVPercentage > e.cfg.HighEVThreshold {
		alerts = append(alerts, alert.Alert{
			MatchID:   current.MatchID,
			AlertType: alert.TypeHighEV,
			Title:     "High EV detected",
			Message:   fmt.Sprintf("%s shows %.1f%% expected value", matchName, current.EVPercentage),
			Priority:  alert.PriorityHigh,
		})
	}

	if current.Recommendation == analysis.RecommendationEnter && current.EVPercentage > e.cfg.EntryEVThreshold {
		alerts = append(alerts, alert.Alert{
			MatchID:   current.MatchID,
			AlertType: alert.TypeEntryOpportunity,
			Title:     "Entry opportunity",
			Message:   fmt.Sprintf("%s recommends entry at %.2f odds (%.1f%% EV)", matchName, current.CurrentOdds, current.EVPercentage),
			Priority:  alert.PriorityHigh,
		})
	}

	if previous != nil && previous.CurrentOdds > 0 {
		swing := math.Abs(current.CurrentOdds-previous.CurrentOdds) / previous.CurrentOdds
		if swing > e.cfg.OddsSwingRatio+boundaryEpsilon {
			alerts = append(alerts, alert.Alert{
				MatchID:   current.MatchID,
				AlertType: alert.TypeOddsChange,
				Title:     "Odds moved",
				Message:   fmt.Sprintf("%s odds moved from %.2f to %.2f (%.1f%%)", matchName, previous.CurrentOdds, current.CurrentOdds, swing*100),
				Priority:  alert.PriorityMedium,
			})
		}
	}

	if previous != nil && current.EVPercentage-previous.EVPercentage > e.cfg.EVImprovementDelta+boundaryEpsilon {
		alerts = append(alerts, alert.Alert{
			MatchID:   current.MatchID,
			AlertType: alert.TypeEVImprovement,
			Title:     "EV improving",
			Message:   fmt.Sprintf("%s EV rose from %.1f%% to %.1f%%", matchName, previous.EVPercentage, current.EVPercentage),
			Priority:  alert.PriorityMedium,
		})
	}

	if current.UnderThresholdProb > e.cfg.HighProbabilityThreshold && current.EVPercentage > 0 {
		alerts = append(alerts, alert.Alert{
			MatchID:   current.MatchID,
			AlertType: alert.TypeHighProbability,
			Title:     "High probability",
			Message:   fmt.Sprintf("%s sits at %.0f%% probability with positive EV", matchName, current.UnderThresholdProb),
			Priority:  alert.PriorityMedium,
		})
	}

	return alerts
}
