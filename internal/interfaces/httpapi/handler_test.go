package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/rmarchetti/livevalue/internal/domain/alert"
	"github.com/rmarchetti/livevalue/internal/domain/match"
	"github.com/rmarchetti/livevalue/internal/infrastructure/repository/memory"
	"github.com/rmarchetti/livevalue/internal/platform/logging"
	"github.com/rmarchetti/livevalue/internal/usecase"
)

type routerFixture struct {
	router  http.Handler
	matches *memory.MatchRepository
	alerts  *memory.AlertRepository
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()

	matches := memory.NewMatchRepository()
	analyses := memory.NewAnalysisRepository()
	metricsRepo := memory.NewMetricsRepository()
	alerts := memory.NewAlertRepository()

	queryService := usecase.NewQueryService(matches, analyses, metricsRepo, alerts)
	handler := NewHandler(nil, queryService, nil, 0, logging.NewNop())
	router := NewRouter(handler, logging.NewNop(), []string{"*"}, "job-token")

	return routerFixture{router: router, matches: matches, alerts: alerts}
}

func decodeEnvelope(t *testing.T, body string) googleResponseEnvelope {
	t.Helper()

	var envelope googleResponseEnvelope
	if err := sonic.Unmarshal([]byte(body), &envelope); err != nil {
		t.Fatalf("decode response envelope: %v", err)
	}
	return envelope
}

func TestRouter_Healthz(t *testing.T) {
	fixture := newRouterFixture(t)

	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec.Body.String())
	if envelope.Error != nil {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}
}

func TestRouter_ListMatches(t *testing.T) {
	fixture := newRouterFixture(t)
	ctx := t.Context()

	if _, _, err := fixture.matches.UpsertByExternalID(ctx, match.Match{
		ExternalID: "fx-1",
		HomeTeam:   "Alpha",
		AwayTeam:   "Beta",
		Status:     match.StatusLive,
		Minute:     30,
		KickoffAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed match: %v", err)
	}

	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/matches?status=live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"home_team":"Alpha"`) {
		t.Fatalf("expected match in response, got %s", rec.Body.String())
	}
}

func TestRouter_ListMatchesRejectsUnknownStatus(t *testing.T) {
	fixture := newRouterFixture(t)

	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/matches?status=bogus", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec.Body.String())
	if envelope.Error == nil || envelope.Error.Status != "INVALID_ARGUMENT" {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}
}

func TestRouter_MarkAlertRead(t *testing.T) {
	fixture := newRouterFixture(t)
	ctx := t.Context()

	if err := fixture.alerts.InsertMany(ctx, []alert.Alert{{
		ID:        "alert-1",
		MatchID:   "match-1",
		AlertType: alert.TypeHighEV,
		Title:     "High EV detected",
		Priority:  alert.PriorityHigh,
		CreatedAt: time.Now().UTC(),
	}}); err != nil {
		t.Fatalf("seed alert: %v", err)
	}

	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/v1/alerts/alert-1/read", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/v1/alerts/missing/read", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing alert, got %d", rec.Code)
	}
}

func TestRouter_InternalJobRequiresToken(t *testing.T) {
	fixture := newRouterFixture(t)

	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/ingestion/run", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/ingestion/run", nil)
	req.Header.Set("X-Internal-Job-Token", "wrong")
	rec = httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}
}

func TestRouter_InternalJobRunsCycle(t *testing.T) {
	matches := memory.NewMatchRepository()
	analyses := memory.NewAnalysisRepository()
	metricsRepo := memory.NewMetricsRepository()
	alerts := memory.NewAlertRepository()

	engine, err := usecase.NewAnalysisEngine(usecase.DefaultAnalysisConfig(), nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	evaluator, err := usecase.NewAlertEvaluator(usecase.DefaultAlertConfig())
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}

	ingestion, err := usecase.NewIngestionService(usecase.IngestionServiceParams{
		Source:       staticFixtureSource{},
		Reconciler:   usecase.NewReconciler(matches, analyses),
		Engine:       engine,
		Evaluator:    evaluator,
		MatchRepo:    matches,
		AnalysisRepo: analyses,
		MetricsRepo:  metricsRepo,
		AlertRepo:    alerts,
		Logger:       logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("new ingestion service: %v", err)
	}

	queryService := usecase.NewQueryService(matches, analyses, metricsRepo, alerts)
	handler := NewHandler(ingestion, queryService, nil, 0, logging.NewNop())
	router := NewRouter(handler, logging.NewNop(), nil, "job-token")

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/ingestion/run", nil)
	req.Header.Set("X-Internal-Job-Token", "job-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"fixtures_seen":1`) {
		t.Fatalf("expected cycle report in response, got %s", rec.Body.String())
	}
}

type staticFixtureSource struct{}

func (staticFixtureSource) FetchLive(_ context.Context) ([]usecase.RawFixture, error) {
	minute := 30
	goals := 0
	return []usecase.RawFixture{{
		ExternalID: "fx-router-1",
		HomeTeam:   "Alpha",
		AwayTeam:   "Beta",
		StatusCode: "1H",
		Minute:     &minute,
		GoalsHome:  &goals,
		GoalsAway:  &goals,
		KickoffAt:  time.Now().UTC(),
	}}, nil
}
