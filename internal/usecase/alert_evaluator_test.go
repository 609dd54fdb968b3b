package usecase

import (
	"testing"

	"github.com/rmarchetti/livevalue/internal/domain/alert"
	"github.com/rmarchetti/livevalue/internal/domain/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvaluator(t *testing.T) *AlertEvaluator {
	t.Helper()

	evaluator, err := NewAlertEvaluator(DefaultAlertConfig())
	require.NoError(t, err)
	return evaluator
}

func alertTypes(alerts []alert.Alert) []string {
	types := make([]string, 0, len(alerts))
	for _, a := range alerts {
		types = append(types, a.AlertType)
	}
	return types
}

func TestAlertEvaluator_HighEVAndEntry(t *testing.T) {
	t.Parallel()

	evaluator := newTestEvaluator(t)
	current := analysis.Analysis{
		MatchID:            "m1",
		UnderThresholdProb: 50,
		CurrentOdds:        1.8,
		EVPercentage:       12,
		Recommendation:     analysis.RecommendationEnter,
	}
	previous := &analysis.Analysis{
		MatchID:      "m1",
		CurrentOdds:  1.8,
		EVPercentage: 11,
	}

	alerts := evaluator.Evaluate("Alpha vs Beta", current, previous)

	assert.ElementsMatch(t, []string{alert.TypeHighEV, alert.TypeEntryOpportunity}, alertTypes(alerts))
	for _, a := range alerts {
		assert.Equal(t, alert.PriorityHigh, a.Priority)
		assert.Equal(t, "m1", a.MatchID)
		assert.Contains(t, a.Message, "Alpha vs Beta")
	}
}

func TestAlertEvaluator_OddsSwingBoundary(t *testing.T) {
	t.Parallel()

	evaluator := newTestEvaluator(t)
	previous := &analysis.Analysis{MatchID: "m1", CurrentOdds: 2.00}

	// exactly 5% is not a swing, the rule is strictly greater
	exact := evaluator.Evaluate("Alpha vs Beta", analysis.Analysis{MatchID: "m1", CurrentOdds: 2.10}, previous)
	assert.NotContains(t, alertTypes(exact), alert.TypeOddsChange)

	above := evaluator.Evaluate("Alpha vs Beta", analysis.Analysis{MatchID: "m1", CurrentOdds: 2.11}, previous)
	require.Contains(t, alertTypes(above), alert.TypeOddsChange)
	for _, a := range above {
		if a.AlertType == alert.TypeOddsChange {
			assert.Equal(t, alert.PriorityMedium, a.Priority)
		}
	}
}

func TestAlertEvaluator_EVImprovement(t *testing.T) {
	t.Parallel()

	evaluator := newTestEvaluator(t)
	previous := &analysis.Analysis{MatchID: "m1", CurrentOdds: 2.0, EVPercentage: 1}
	current := analysis.Analysis{MatchID: "m1", CurrentOdds: 2.0, EVPercentage: 4.5}

	alerts := evaluator.Evaluate("Alpha vs Beta", current, previous)
	assert.Equal(t, []string{alert.TypeEVImprovement}, alertTypes(alerts))

	// delta of exactly 3 does not fire
	flat := evaluator.Evaluate("Alpha vs Beta", analysis.Analysis{MatchID: "m1", CurrentOdds: 2.0, EVPercentage: 4}, previous)
	assert.Empty(t, flat)

	// 1.1 -> 4.1 is also exactly +3 despite float64 noise in the subtraction
	noisyPrev := &analysis.Analysis{MatchID: "m1", CurrentOdds: 2.0, EVPercentage: 1.1}
	noisy := evaluator.Evaluate("Alpha vs Beta", analysis.Analysis{MatchID: "m1", CurrentOdds: 2.0, EVPercentage: 4.1}, noisyPrev)
	assert.Empty(t, noisy)
}

func TestAlertEvaluator_HighProbabilityNeedsPositiveEV(t *testing.T) {
	t.Parallel()

	evaluator := newTestEvaluator(t)

	fired := evaluator.Evaluate("Alpha vs Beta", analysis.Analysis{MatchID: "m1", UnderThresholdProb: 90, EVPercentage: 0.5}, nil)
	assert.Equal(t, []string{alert.TypeHighProbability}, alertTypes(fired))

	negativeEV := evaluator.Evaluate("Alpha vs Beta", analysis.Analysis{MatchID: "m1", UnderThresholdProb: 90, EVPercentage: -1}, nil)
	assert.Empty(t, negativeEV)
}

func TestAlertEvaluator_NoPreviousSkipsDiffRules(t *testing.T) {
	t.Parallel()

	evaluator := newTestEvaluator(t)
	current := analysis.Analysis{
		MatchID:      "m1",
		CurrentOdds:  3.0,
		EVPercentage: 4,
	}

	alerts := evaluator.Evaluate("Alpha vs Beta", current, nil)
	assert.Empty(t, alerts)
}

func TestAlertEvaluator_RulesAreIndependent(t *testing.T) {
	t.Parallel()

	evaluator := newTestEvaluator(t)
	previous := &analysis.Analysis{MatchID: "m1", CurrentOdds: 2.0, EVPercentage: 2}
	current := analysis.Analysis{
		MatchID:            "m1",
		UnderThresholdProb: 90,
		CurrentOdds:        2.2,
		EVPercentage:       12,
		Recommendation:     analysis.RecommendationEnter,
	}

	alerts := evaluator.Evaluate("Alpha vs Beta", current, previous)

	assert.ElementsMatch(t, []string{
		alert.TypeHighEV,
		alert.TypeEntryOpportunity,
		alert.TypeOddsChange,
		alert.TypeEVImprovement,
		alert.TypeHighProbability,
	}, alertTypes(alerts))
}
