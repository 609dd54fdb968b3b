package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rmarchetti/livevalue/internal/domain/alert"
	"github.com/rmarchetti/livevalue/internal/domain/analysis"
	"github.com/rmarchetti/livevalue/internal/domain/match"
	"github.com/rmarchetti/livevalue/internal/domain/metrics"
	"github.com/sourcegraph/conc/pool"
)

// MatchView is a match hydrated with its value snapshot and statistics for
// the read path. Analysis and Metrics are nil when not yet computed.
type MatchView struct {
	Match    match.Match
	Analysis *analysis.Analysis
	Metrics  *metrics.Metrics
}

type ListMatchesInput struct {
	Statuses []string
	Limit    int
}

type ListAlertsInput struct {
	MatchID string
	Unread  *bool
	Limit   int
}

// QueryService is the consumer read path. The engine itself never reads
// through it; dashboards and notifiers do.
type QueryService struct {
	matches  match.Repository
	analyses analysis.Repository
	metrics  metrics.Repository
	alerts   alert.Repository
}

func NewQueryService(
	matches match.Repository,
	analyses analysis.Repository,
	metricsRepo metrics.Repository,
	alerts alert.Repository,
) *QueryService {
	return &QueryService{
		matches:  matches,
		analyses: analyses,
		metrics:  metricsRepo,
		alerts:   alerts,
	}
}

func (s *QueryService) ListMatches(ctx context.Context, input ListMatchesInput) ([]MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ListMatches")
	defer span.End()

	statuses := make([]string, 0, len(input.Statuses))
	for _, status := range input.Statuses {
		status = match.NormalizeStatus(status)
		if !match.IsValidStatus(status) {
			return nil, fmt.Errorf("%w: unknown match status %q", ErrInvalidInput, status)
		}
		statuses = append(statuses, status)
	}

	items, err := s.matches.ListByStatus(ctx, statuses...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	if input.Limit > 0 && len(items) > input.Limit {
		items = items[:input.Limit]
	}
	if len(items) == 0 {
		return []MatchView{}, nil
	}

	ids := make([]string, 0, len(items))
	for _, m := range items {
		ids = append(ids, m.ID)
	}

	var analyses []analysis.Analysis
	var stats []metrics.Metrics

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		rows, err := s.analyses.ListByMatchIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("hydrate analyses: %w", err)
		}
		analyses = rows
		return nil
	})
	p.Go(func(ctx context.Context) error {
		rows, err := s.metrics.ListByMatchIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("hydrate metrics: %w", err)
		}
		stats = rows
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	analysisByMatch := make(map[string]analysis.Analysis, len(analyses))
	for _, a := range analyses {
		analysisByMatch[a.MatchID] = a
	}
	metricsByMatch := make(map[string]metrics.Metrics, len(stats))
	for _, mm := range stats {
		metricsByMatch[mm.MatchID] = mm
	}

	views := make([]MatchView, 0, len(items))
	for _, m := range items {
		view := MatchView{Match: m}
		if a, ok := analysisByMatch[m.ID]; ok {
			a := a
			view.Analysis = &a
		}
		if mm, ok := metricsByMatch[m.ID]; ok {
			mm := mm
			view.Metrics = &mm
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *QueryService) ListAlerts(ctx context.Context, input ListAlertsInput) ([]alert.Alert, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ListAlerts")
	defer span.End()

	items, err := s.alerts.List(ctx, alert.ListFilter{
		MatchID: strings.TrimSpace(input.MatchID),
		Unread:  input.Unread,
		Limit:   input.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return items, nil
}

func (s *QueryService) MarkAlertRead(ctx context.Context, alertID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.MarkAlertRead")
	defer span.End()

	alertID = strings.TrimSpace(alertID)
	if alertID == "" {
		return fmt.Errorf("%w: alert id is required", ErrInvalidInput)
	}

	found, err := s.alerts.MarkRead(ctx, alertID)
	if err != nil {
		return fmt.Errorf("mark alert %s read: %w", alertID, err)
	}
	if !found {
		return fmt.Errorf("%w: alert=%s", ErrNotFound, alertID)
	}
	return nil
}
