package usecase

import (
	"testing"
	"time"

	"github.com/rmarchetti/livevalue/internal/domain/analysis"
	"github.com/rmarchetti/livevalue/internal/domain/match"
	"github.com/rmarchetti/livevalue/internal/domain/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *AnalysisEngine {
	t.Helper()

	engine, err := NewAnalysisEngine(DefaultAnalysisConfig(), NewMetricsEdgeModel())
	require.NoError(t, err)
	return engine
}

func TestAnalysisEngine_Deterministic(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	m := match.Match{ID: "m1", Minute: 37, ScoreHome: 1, ScoreAway: 0}
	mm := metrics.Metrics{MatchID: "m1", XGTotal: 2.4}
	at := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	first := engine.Analyze(m, mm, at)
	second := engine.Analyze(m, mm, at)

	assert.Equal(t, first, second)
}

func TestAnalysisEngine_ProbabilityFormula(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	m := match.Match{ID: "m1", Minute: 30, ScoreHome: 1, ScoreAway: 1}

	got := engine.Analyze(m, metrics.Metrics{XGTotal: 2}, time.Now())

	// 85 - 2*15 - 30*0.2 = 49
	assert.InDelta(t, 49, got.UnderThresholdProb, 1e-9)
	// 1.2 + 2*0.3 = 1.8
	assert.InDelta(t, 1.8, got.CurrentOdds, 1e-9)
	assert.Equal(t, analysis.ConfidenceMedium, got.ConfidenceLevel)
	assert.Equal(t, 39, got.Rating)
}

func TestAnalysisEngine_ProbabilityClamped(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	floor := engine.Analyze(match.Match{Minute: 120, ScoreHome: 4, ScoreAway: 3}, metrics.Metrics{}, time.Now())
	assert.InDelta(t, 20, floor.UnderThresholdProb, 1e-9)
	assert.Equal(t, analysis.ConfidenceLow, floor.ConfidenceLevel)

	ceil := engine.Analyze(match.Match{Minute: 0}, metrics.Metrics{}, time.Now())
	assert.LessOrEqual(t, ceil.UnderThresholdProb, 95.0)
}

func TestAnalysisEngine_RecommendationBands(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	m := match.Match{ID: "m1", Minute: 60}

	// pressure 3 -> edge +0.12 -> ev +12 > enter threshold
	enter := engine.Analyze(m, metrics.Metrics{XGTotal: 3}, time.Now())
	assert.Equal(t, analysis.RecommendationEnter, enter.Recommendation)
	assert.InDelta(t, 12, enter.EVPercentage, 1e-9)

	// pressure -3 -> edge -0.12 -> ev -12 < avoid threshold
	avoid := engine.Analyze(match.Match{ID: "m1", Minute: 60, ScoreHome: 2, ScoreAway: 1}, metrics.Metrics{XGTotal: 0}, time.Now())
	assert.Equal(t, analysis.RecommendationAvoid, avoid.Recommendation)

	monitor := engine.Analyze(m, metrics.Metrics{XGTotal: 0.5}, time.Now())
	assert.Equal(t, analysis.RecommendationMonitor, monitor.Recommendation)
}

func TestAnalysisEngine_EdgeClampedAtMax(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	got := engine.Analyze(match.Match{ID: "m1", Minute: 10}, metrics.Metrics{XGTotal: 50}, time.Now())
	assert.InDelta(t, 25, got.EVPercentage, 1e-9)
}

func TestAnalysisConfig_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultAnalysisConfig().Validate())

	bad := DefaultAnalysisConfig()
	bad.OddsFloor = 0.9
	assert.ErrorIs(t, bad.Validate(), ErrConfiguration)

	crossed := DefaultAnalysisConfig()
	crossed.EnterThreshold = -10
	assert.ErrorIs(t, crossed.Validate(), ErrConfiguration)
}
