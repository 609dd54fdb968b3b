package usecase

import (
	"math"
	"time"

	"github.com/rmarchetti/livevalue/internal/domain/analysis"
	"github.com/rmarchetti/livevalue/internal/domain/match"
	"github.com/rmarchetti/livevalue/internal/domain/metrics"
)

// AnalysisConfig names every constant of the value model. A zero threshold is
// a configuration error, not a default; callers start from DefaultAnalysisConfig.
type AnalysisConfig struct {
	Baseline            float64
	GoalPenalty         float64
	TimePenalty         float64
	MinProbability      float64
	MaxProbability      float64
	OddsFloor           float64
	OddsGoalFactor      float64
	EnterThreshold      float64
	AvoidThreshold      float64
	ConfidenceThreshold float64
	RatingWeight        float64
}

func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Baseline:            85,
		GoalPenalty:         15,
		TimePenalty:         0.2,
		MinProbability:      20,
		MaxProbability:      95,
		OddsFloor:           1.2,
		OddsGoalFactor:      0.3,
		EnterThreshold:      5,
		AvoidThreshold:      -5,
		ConfidenceThreshold: 70,
		RatingWeight:        0.8,
	}
}

func (c AnalysisConfig) Validate() error {
	if c.Baseline <= 0 || c.GoalPenalty < 0 || c.TimePenalty < 0 {
		return ErrConfiguration
	}
	if c.MinProbability < 0 || c.MaxProbability <= c.MinProbability {
		return ErrConfiguration
	}
	if c.OddsFloor <= 1.0 || c.OddsGoalFactor < 0 {
		return ErrConfiguration
	}
	if c.EnterThreshold <= c.AvoidThreshold {
		return ErrConfiguration
	}
	if c.ConfidenceThreshold <= 0 || c.RatingWeight <= 0 {
		return ErrConfiguration
	}
	return nil
}

// EdgeModel estimates the recommended-to-current odds ratio for one match.
// Implementations must be deterministic for identical inputs; randomized
// models belong to the synthetic generator, never here.
type EdgeModel interface {
	EdgeFactor(m match.Match, mm metrics.Metrics) float64
}

// MetricsEdgeModel derives edge from expected-goals pressure: a side creating
// more xG than it has scored is undervalued by in-play odds that track the
// scoreboard only.
type MetricsEdgeModel struct {
	PressureWeight float64
	MaxEdge        float64
}

func NewMetricsEdgeModel() *MetricsEdgeModel {
	return &MetricsEdgeModel{
		PressureWeight: 0.04,
		MaxEdge:        0.25,
	}
}

func (e *MetricsEdgeModel) EdgeFactor(m match.Match, mm metrics.Metrics) float64 {
	totalGoals := float64(m.ScoreHome + m.ScoreAway)
	pressure := mm.XGTotal - totalGoals
	edge := pressure * e.PressureWeight
	if edge > e.MaxEdge {
		edge = e.MaxEdge
	}
	if edge < -e.MaxEdge {
		edge = -e.MaxEdge
	}
	return 1 + edge
}

// AnalysisEngine turns match state plus metrics into a value snapshot. Analyze
// is pure: identical inputs and config always produce an identical result.
type AnalysisEngine struct {
	cfg  AnalysisConfig
	edge EdgeModel
}

func NewAnalysisEngine(cfg AnalysisConfig, edge EdgeModel) (*AnalysisEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if edge == nil {
		edge = NewMetricsEdgeModel()
	}
	return &AnalysisEngine{cfg: cfg, edge: edge}, nil
}

func (e *AnalysisEngine) Analyze(m match.Match, mm metrics.Metrics, at time.Time) analysis.Analysis {
	totalGoals := float64(m.ScoreHome + m.ScoreAway)

	probability := e.cfg.Baseline - totalGoals*e.cfg.GoalPenalty - float64(m.Minute)*e.cfg.TimePenalty
	probability = clamp(probability, e.cfg.MinProbability, e.cfg.MaxProbability)

	currentOdds := e.cfg.OddsFloor + totalGoals*e.cfg.OddsGoalFactor
	recommendedOdds := currentOdds * e.edge.EdgeFactor(m, mm)
	ev := (recommendedOdds/currentOdds - 1) * 100

	recommendation := analysis.RecommendationMonitor
	switch {
	case ev > e.cfg.EnterThreshold:
		recommendation = analysis.RecommendationEnter
	case ev < e.cfg.AvoidThreshold:
		recommendation = analysis.RecommendationAvoid
	}

	confidence := analysis.ConfidenceMedium
	switch {
	case probability > e.cfg.ConfidenceThreshold:
		confidence = analysis.ConfidenceHigh
	case probability <= e.cfg.MinProbability:
		confidence = analysis.ConfidenceLow
	}

	rating := int(math.Round(probability * e.cfg.RatingWeight))
	if rating < 0 {
		rating = 0
	}
	if rating > 100 {
		rating = 100
	}

	return analysis.Analysis{
		MatchID:            m.ID,
		UnderThresholdProb: probability,
		CurrentOdds:        currentOdds,
		RecommendedOdds:    recommendedOdds,
		EVPercentage:       ev,
		Recommendation:     recommendation,
		ConfidenceLevel:    confidence,
		Rating:             rating,
		UpdatedAt:          at,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
