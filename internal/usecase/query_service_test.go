package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/rmarchetti/livevalue/internal/domain/alert"
	"github.com/rmarchetti/livevalue/internal/domain/analysis"
	"github.com/rmarchetti/livevalue/internal/domain/match"
	"github.com/rmarchetti/livevalue/internal/infrastructure/repository/memory"
)

func newQueryFixture(t *testing.T) (*QueryService, *memory.MatchRepository, *memory.AnalysisRepository, *memory.AlertRepository) {
	t.Helper()

	matchRepo := memory.NewMatchRepository()
	analysisRepo := memory.NewAnalysisRepository()
	metricsRepo := memory.NewMetricsRepository()
	alertRepo := memory.NewAlertRepository()
	svc := NewQueryService(matchRepo, analysisRepo, metricsRepo, alertRepo)
	return svc, matchRepo, analysisRepo, alertRepo
}

func TestQueryService_ListMatches_HydratesAnalysis(t *testing.T) {
	t.Parallel()

	svc, matchRepo, analysisRepo, _ := newQueryFixture(t)

	stored, _, err := matchRepo.UpsertByExternalID(t.Context(), match.Match{
		ExternalID: "ext-1",
		HomeTeam:   "Alpha",
		AwayTeam:   "Beta",
		Status:     match.StatusLive,
		KickoffAt:  time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed match: %v", err)
	}
	if err := analysisRepo.Upsert(t.Context(), analysis.Analysis{MatchID: stored.ID, EVPercentage: 7}); err != nil {
		t.Fatalf("seed analysis: %v", err)
	}

	views, err := svc.ListMatches(t.Context(), ListMatchesInput{Statuses: []string{match.StatusLive}})
	if err != nil {
		t.Fatalf("list matches failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected one view, got %d", len(views))
	}
	if views[0].Analysis == nil || views[0].Analysis.EVPercentage != 7 {
		t.Fatalf("analysis not hydrated: %+v", views[0].Analysis)
	}
	if views[0].Metrics != nil {
		t.Fatalf("metrics should be absent for unseeded match")
	}
}

func TestQueryService_ListMatches_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newQueryFixture(t)

	if _, err := svc.ListMatches(t.Context(), ListMatchesInput{Statuses: []string{"paused"}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestQueryService_ListAlerts_UnreadFilter(t *testing.T) {
	t.Parallel()

	svc, _, _, alertRepo := newQueryFixture(t)

	seed := []alert.Alert{
		{ID: "a1", MatchID: "m1", AlertType: alert.TypeHighEV, CreatedAt: time.Now().Add(-time.Minute)},
		{ID: "a2", MatchID: "m1", AlertType: alert.TypeOddsChange, IsRead: true, CreatedAt: time.Now()},
	}
	if err := alertRepo.InsertMany(t.Context(), seed); err != nil {
		t.Fatalf("seed alerts: %v", err)
	}

	unread := true
	items, err := svc.ListAlerts(t.Context(), ListAlertsInput{Unread: &unread})
	if err != nil {
		t.Fatalf("list alerts failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "a1" {
		t.Fatalf("unread filter broken: %+v", items)
	}
}

func TestQueryService_MarkAlertRead(t *testing.T) {
	t.Parallel()

	svc, _, _, alertRepo := newQueryFixture(t)
	if err := alertRepo.InsertMany(t.Context(), []alert.Alert{{ID: "a1", MatchID: "m1"}}); err != nil {
		t.Fatalf("seed alert: %v", err)
	}

	if err := svc.MarkAlertRead(t.Context(), "a1"); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}

	read := false
	items, err := svc.ListAlerts(t.Context(), ListAlertsInput{Unread: &read})
	if err != nil {
		t.Fatalf("list alerts failed: %v", err)
	}
	if len(items) != 1 || !items[0].IsRead {
		t.Fatalf("alert not marked read: %+v", items)
	}

	if err := svc.MarkAlertRead(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.MarkAlertRead(t.Context(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
