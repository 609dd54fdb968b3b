package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rmarchetti/livevalue/internal/domain/alert"
	qb "github.com/rmarchetti/livevalue/internal/platform/querybuilder"
)

type AlertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) InsertMany(ctx context.Context, alerts []alert.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	builder := qb.InsertInto("alerts").
		Columns("id", "match_id", "alert_type", "title", "message", "priority", "is_read", "created_at")
	for _, a := range alerts {
		builder = builder.Values(a.ID, a.MatchID, a.AlertType, a.Title, a.Message, a.Priority, a.IsRead, a.CreatedAt)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build alerts insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert alerts: %w", err)
	}
	return nil
}

func (r *AlertRepository) List(ctx context.Context, filter alert.ListFilter) ([]alert.Alert, error) {
	builder := qb.Select("*").From("alerts").OrderBy("created_at DESC", "id DESC")
	if filter.MatchID != "" {
		builder = builder.Where(qb.Eq("match_id", filter.MatchID))
	}
	if filter.Unread != nil {
		builder = builder.Where(qb.Eq("is_read", !*filter.Unread))
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list alerts query: %w", err)
	}

	var rows []alertTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	out := make([]alert.Alert, 0, len(rows))
	for _, row := range rows {
		out = append(out, alert.Alert{
			ID:        row.ID,
			MatchID:   row.MatchID,
			AlertType: row.AlertType,
			Title:     row.Title,
			Message:   row.Message,
			Priority:  row.Priority,
			IsRead:    row.IsRead,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (r *AlertRepository) MarkRead(ctx context.Context, alertID string) (bool, error) {
	query, args, err := qb.Update("alerts").
		Set("is_read", true).
		Where(qb.Eq("id", alertID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build mark alert read query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark alert read id=%s: %w", alertID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count marked alerts: %w", err)
	}
	return affected > 0, nil
}
