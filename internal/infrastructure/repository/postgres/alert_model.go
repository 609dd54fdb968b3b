package postgres

import "time"

type alertTableModel struct {
	ID        string    `db:"id"`
	MatchID   string    `db:"match_id"`
	AlertType string    `db:"alert_type"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Priority  string    `db:"priority"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}
