package postgres

import "time"

type metricsTableModel struct {
	MatchID          string    `db:"match_id"`
	XGHome           float64   `db:"xg_home"`
	XGAway           float64   `db:"xg_away"`
	XGTotal          float64   `db:"xg_total"`
	DangerousAttacks int       `db:"dangerous_attacks"`
	PossessionHome   int       `db:"possession_home"`
	PossessionAway   int       `db:"possession_away"`
	ShotsHome        int       `db:"shots_home"`
	ShotsAway        int       `db:"shots_away"`
	ShotsOnTgtHome   int       `db:"shots_on_target_home"`
	ShotsOnTgtAway   int       `db:"shots_on_target_away"`
	CornersHome      int       `db:"corners_home"`
	CornersAway      int       `db:"corners_away"`
	CreatedAt        time.Time `db:"created_at"`
}
