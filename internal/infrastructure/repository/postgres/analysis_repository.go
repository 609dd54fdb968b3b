package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rmarchetti/livevalue/internal/domain/analysis"
	qb "github.com/rmarchetti/livevalue/internal/platform/querybuilder"
)

type AnalysisRepository struct {
	db *sqlx.DB
}

func NewAnalysisRepository(db *sqlx.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) Upsert(ctx context.Context, a analysis.Analysis) error {
	insertModel := analysisTableModel{
		MatchID:            a.MatchID,
		UnderThresholdProb: a.UnderThresholdProb,
		CurrentOdds:        a.CurrentOdds,
		RecommendedOdds:    a.RecommendedOdds,
		EVPercentage:       a.EVPercentage,
		Recommendation:     a.Recommendation,
		ConfidenceLevel:    a.ConfidenceLevel,
		Rating:             a.Rating,
		UpdatedAt:          a.UpdatedAt,
	}

	query, args, err := qb.InsertModel("match_analysis", insertModel, `ON CONFLICT (match_id)
DO UPDATE SET
    under_threshold_probability = EXCLUDED.under_threshold_probability,
    current_odds = EXCLUDED.current_odds,
    recommended_odds = EXCLUDED.recommended_odds,
    ev_percentage = EXCLUDED.ev_percentage,
    recommendation = EXCLUDED.recommendation,
    confidence_level = EXCLUDED.confidence_level,
    rating = EXCLUDED.rating,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build analysis upsert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert analysis match_id=%s: %w", a.MatchID, err)
	}
	return nil
}

func (r *AnalysisRepository) GetByMatchID(ctx context.Context, matchID string) (analysis.Analysis, bool, error) {
	query, args, err := qb.Select("*").From("match_analysis").
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return analysis.Analysis{}, false, fmt.Errorf("build get analysis query: %w", err)
	}

	var row analysisTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return analysis.Analysis{}, false, nil
		}
		return analysis.Analysis{}, false, fmt.Errorf("get analysis: %w", err)
	}

	return mapAnalysisRow(row), true, nil
}

func (r *AnalysisRepository) ListByMatchIDs(ctx context.Context, matchIDs []string) ([]analysis.Analysis, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("*").From("match_analysis").
		Where(qb.In("match_id", toAnySlice(matchIDs))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list analyses query: %w", err)
	}

	var rows []analysisTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	out := make([]analysis.Analysis, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapAnalysisRow(row))
	}
	return out, nil
}

func mapAnalysisRow(row analysisTableModel) analysis.Analysis {
	return analysis.Analysis{
		MatchID:            row.MatchID,
		UnderThresholdProb: row.UnderThresholdProb,
		CurrentOdds:        row.CurrentOdds,
		RecommendedOdds:    row.RecommendedOdds,
		EVPercentage:       row.EVPercentage,
		Recommendation:     row.Recommendation,
		ConfidenceLevel:    row.ConfidenceLevel,
		Rating:             row.Rating,
		UpdatedAt:          row.UpdatedAt,
	}
}
