package postgres

import "time"

type matchTableModel struct {
	ID          string    `db:"id"`
	ExternalID  string    `db:"external_id"`
	HomeTeam    string    `db:"home_team"`
	AwayTeam    string    `db:"away_team"`
	League      string    `db:"league"`
	Status      string    `db:"status"`
	Minute      int       `db:"minute"`
	ScoreHome   int       `db:"score_home"`
	ScoreAway   int       `db:"score_away"`
	KickoffAt   time.Time `db:"kickoff_at"`
	IsSynthetic bool      `db:"is_synthetic"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type matchInsertModel struct {
	ID          string    `db:"id"`
	ExternalID  string    `db:"external_id"`
	HomeTeam    string    `db:"home_team"`
	AwayTeam    string    `db:"away_team"`
	League      string    `db:"league"`
	Status      string    `db:"status"`
	Minute      int       `db:"minute"`
	ScoreHome   int       `db:"score_home"`
	ScoreAway   int       `db:"score_away"`
	KickoffAt   time.Time `db:"kickoff_at"`
	IsSynthetic bool      `db:"is_synthetic"`
	UpdatedAt   time.Time `db:"updated_at"`
}
