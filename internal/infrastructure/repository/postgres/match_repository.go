package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rmarchetti/livevalue/internal/domain/match"
	qb "github.com/rmarchetti/livevalue/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// matchUpsertQuery targets the partial unique index on external_id; the
// conflict target must repeat the index predicate or the planner refuses to
// use the index as arbiter.
func matchUpsertQuery(m match.Match) (string, []any, error) {
	insertModel := matchInsertModel{
		ID:          m.ID,
		ExternalID:  m.ExternalID,
		HomeTeam:    m.HomeTeam,
		AwayTeam:    m.AwayTeam,
		League:      m.League,
		Status:      m.Status,
		Minute:      m.Minute,
		ScoreHome:   m.ScoreHome,
		ScoreAway:   m.ScoreAway,
		KickoffAt:   m.KickoffAt,
		IsSynthetic: m.IsSynthetic,
		UpdatedAt:   m.UpdatedAt,
	}

	return qb.InsertModel("matches", insertModel, `ON CONFLICT (external_id) WHERE external_id <> ''
DO UPDATE SET
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    league = EXCLUDED.league,
    status = EXCLUDED.status,
    minute = EXCLUDED.minute,
    score_home = EXCLUDED.score_home,
    score_away = EXCLUDED.score_away,
    kickoff_at = EXCLUDED.kickoff_at,
    updated_at = EXCLUDED.updated_at
RETURNING id, is_synthetic, (xmax = 0) AS inserted`)
}

// UpsertByExternalID relies on the unique index on external_id for atomicity.
// The stored id and synthetic marker survive the conflict update, so identity
// never changes across cycles.
func (r *MatchRepository) UpsertByExternalID(ctx context.Context, m match.Match) (match.Match, bool, error) {
	query, args, err := matchUpsertQuery(m)
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build match upsert query: %w", err)
	}

	var storedID string
	var storedSynthetic, inserted bool
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&storedID, &storedSynthetic, &inserted); err != nil {
		return match.Match{}, false, fmt.Errorf("upsert match external_id=%s: %w", m.ExternalID, err)
	}

	m.ID = storedID
	m.IsSynthetic = storedSynthetic
	return m, inserted, nil
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID string) (match.Match, bool, error) {
	return r.getOne(ctx, qb.Eq("external_id", externalID))
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (match.Match, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *MatchRepository) getOne(ctx context.Context, cond qb.Condition) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").Where(cond).ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}

	return mapMatchRow(row), true, nil
}

func (r *MatchRepository) ListByStatus(ctx context.Context, statuses ...string) ([]match.Match, error) {
	builder := qb.Select("*").From("matches").OrderBy("kickoff_at", "id")
	if len(statuses) > 0 {
		builder = builder.Where(qb.In("status", toAnySlice(statuses)))
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches by status: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapMatchRow(row))
	}
	return out, nil
}

// finishLiveExceptQuery exempts rows without an external id: the feed never
// carries seeded tuple-identity matches, so absence says nothing about them.
func finishLiveExceptQuery(keep []string, finishedAt time.Time) (string, []any, error) {
	return qb.Update("matches").
		Set("status", match.StatusFinished).
		Set("updated_at", finishedAt).
		Where(
			qb.Eq("status", match.StatusLive),
			qb.Expr("external_id <> ''"),
			qb.Expr("NOT (external_id = ANY(?))", pq.Array(keep)),
		).
		ToSQL()
}

func (r *MatchRepository) FinishLiveExcept(ctx context.Context, keep []string, finishedAt time.Time) (int, error) {
	query, args, err := finishLiveExceptQuery(keep, finishedAt)
	if err != nil {
		return 0, fmt.Errorf("build finish matches query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("finish absent live matches: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count finished matches: %w", err)
	}
	return int(affected), nil
}

func mapMatchRow(row matchTableModel) match.Match {
	return match.Match{
		ID:          row.ID,
		ExternalID:  row.ExternalID,
		HomeTeam:    row.HomeTeam,
		AwayTeam:    row.AwayTeam,
		League:      row.League,
		Status:      row.Status,
		Minute:      row.Minute,
		ScoreHome:   row.ScoreHome,
		ScoreAway:   row.ScoreAway,
		KickoffAt:   row.KickoffAt,
		IsSynthetic: row.IsSynthetic,
		UpdatedAt:   row.UpdatedAt,
	}
}
