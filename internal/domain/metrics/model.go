package metrics

import "time"

// Metrics holds match-statistics inputs for the analysis engine. The engine
// treats them as opaque: they are collected once when a match is first seen
// live and may be refreshed, but alerts never require re-deriving them.
type Metrics struct {
	MatchID          string
	XGHome           float64
	XGAway           float64
	XGTotal          float64
	DangerousAttacks int
	PossessionHome   int
	PossessionAway   int
	ShotsHome        int
	ShotsAway        int
	ShotsOnTgtHome   int
	ShotsOnTgtAway   int
	CornersHome      int
	CornersAway      int
	CreatedAt        time.Time
}
