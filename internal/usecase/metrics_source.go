package usecase

import (
	"context"

	"github.com/rmarchetti/livevalue/internal/domain/match"
	"github.com/rmarchetti/livevalue/internal/domain/metrics"
)

// MetricsSource supplies match-statistics inputs on first live sighting. The
// engine treats the values as opaque; it never re-derives them for alerting.
type MetricsSource interface {
	Collect(ctx context.Context, m match.Match) (metrics.Metrics, error)
}

// DerivedMetricsSource is the deterministic default: pseudo expected-goals
// tracking score and clock. A real statistics feed replaces this in
// production wiring; the randomized producer lives only in the synthetic
// generator.
type DerivedMetricsSource struct{}

func NewDerivedMetricsSource() *DerivedMetricsSource {
	return &DerivedMetricsSource{}
}

func (s *DerivedMetricsSource) Collect(_ context.Context, m match.Match) (metrics.Metrics, error) {
	minuteLoad := float64(m.Minute) * 0.015
	xgHome := float64(m.ScoreHome)*0.85 + minuteLoad
	xgAway := float64(m.ScoreAway)*0.85 + minuteLoad

	possessionHome := 50
	switch {
	case m.ScoreHome > m.ScoreAway:
		possessionHome = 45
	case m.ScoreAway > m.ScoreHome:
		possessionHome = 55
	}

	shotsHome := m.ScoreHome*3 + m.Minute/15
	shotsAway := m.ScoreAway*3 + m.Minute/15

	return metrics.Metrics{
		MatchID:          m.ID,
		XGHome:           xgHome,
		XGAway:           xgAway,
		XGTotal:          xgHome + xgAway,
		DangerousAttacks: (m.ScoreHome + m.ScoreAway + 1) * m.Minute / 10,
		PossessionHome:   possessionHome,
		PossessionAway:   100 - possessionHome,
		ShotsHome:        shotsHome,
		ShotsAway:        shotsAway,
		ShotsOnTgtHome:   m.ScoreHome + shotsHome/3,
		ShotsOnTgtAway:   m.ScoreAway + shotsAway/3,
		CornersHome:      m.Minute / 12,
		CornersAway:      m.Minute / 15,
	}, nil
}
