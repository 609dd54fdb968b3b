package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rmarchetti/livevalue/internal/domain/metrics"
	qb "github.com/rmarchetti/livevalue/internal/platform/querybuilder"
)

type MetricsRepository struct {
	db *sqlx.DB
}

func NewMetricsRepository(db *sqlx.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

func (r *MetricsRepository) InsertIfMissing(ctx context.Context, m metrics.Metrics) (bool, error) {
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	insertModel := metricsTableModel{
		MatchID:          m.MatchID,
		XGHome:           m.XGHome,
		XGAway:           m.XGAway,
		XGTotal:          m.XGTotal,
		DangerousAttacks: m.DangerousAttacks,
		PossessionHome:   m.PossessionHome,
		PossessionAway:   m.PossessionAway,
		ShotsHome:        m.ShotsHome,
		ShotsAway:        m.ShotsAway,
		ShotsOnTgtHome:   m.ShotsOnTgtHome,
		ShotsOnTgtAway:   m.ShotsOnTgtAway,
		CornersHome:      m.CornersHome,
		CornersAway:      m.CornersAway,
		CreatedAt:        createdAt,
	}

	query, args, err := qb.InsertModel("match_metrics", insertModel, "ON CONFLICT (match_id) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build metrics insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert metrics match_id=%s: %w", m.MatchID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count inserted metrics rows: %w", err)
	}
	return affected > 0, nil
}

func (r *MetricsRepository) GetByMatchID(ctx context.Context, matchID string) (metrics.Metrics, bool, error) {
	query, args, err := qb.Select("*").From("match_metrics").
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return metrics.Metrics{}, false, fmt.Errorf("build get metrics query: %w", err)
	}

	var row metricsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return metrics.Metrics{}, false, nil
		}
		return metrics.Metrics{}, false, fmt.Errorf("get metrics: %w", err)
	}

	return mapMetricsRow(row), true, nil
}

func (r *MetricsRepository) ListByMatchIDs(ctx context.Context, matchIDs []string) ([]metrics.Metrics, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("*").From("match_metrics").
		Where(qb.In("match_id", toAnySlice(matchIDs))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list metrics query: %w", err)
	}

	var rows []metricsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}

	out := make([]metrics.Metrics, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapMetricsRow(row))
	}
	return out, nil
}

func mapMetricsRow(row metricsTableModel) metrics.Metrics {
	return metrics.Metrics{
		MatchID:          row.MatchID,
		XGHome:           row.XGHome,
		XGAway:           row.XGAway,
		XGTotal:          row.XGTotal,
		DangerousAttacks: row.DangerousAttacks,
		PossessionHome:   row.PossessionHome,
		PossessionAway:   row.PossessionAway,
		ShotsHome:        row.ShotsHome,
		ShotsAway:        row.ShotsAway,
		ShotsOnTgtHome:   row.ShotsOnTgtHome,
		ShotsOnTgtAway:   row.ShotsOnTgtAway,
		CornersHome:      row.CornersHome,
		CornersAway:      row.CornersAway,
		CreatedAt:        row.CreatedAt,
	}
}
