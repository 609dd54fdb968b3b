package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rmarchetti/livevalue/internal/domain/alert"
	"github.com/rmarchetti/livevalue/internal/domain/analysis"
	"github.com/rmarchetti/livevalue/internal/domain/match"
	"github.com/rmarchetti/livevalue/internal/domain/metrics"
	"github.com/rmarchetti/livevalue/internal/platform/id"
	"github.com/rmarchetti/livevalue/internal/platform/logging"
)

// CycleReport summarizes one ingestion pass. Provider and persistence errors
// surface here instead of aborting the cycle.
type CycleReport struct {
	StartedAt         time.Time `json:"started_at"`
	DurationMs        int64     `json:"duration_ms"`
	FixturesSeen      int       `json:"fixtures_seen"`
	LiveProcessed     int       `json:"live_processed"`
	FixturesRejected  int       `json:"fixtures_rejected"`
	MatchesCreated    int       `json:"matches_created"`
	MatchesUpdated    int       `json:"matches_updated"`
	MatchesFinished   int       `json:"matches_finished"`
	AlertsEmitted     int       `json:"alerts_emitted"`
	PersistenceErrors int       `json:"persistence_errors"`
	ProviderError     string    `json:"provider_error,omitempty"`
	FallbackUsed      string    `json:"fallback_used,omitempty"`
}

type IngestionServiceParams struct {
	Source     FixtureSource
	Classifier *LiveClassifier
	Reconciler *Reconciler
	Engine     *AnalysisEngine
	Evaluator  *AlertEvaluator
	Metrics    MetricsSource

	MatchRepo    match.Repository
	AnalysisRepo analysis.Repository
	MetricsRepo  metrics.Repository
	AlertRepo    alert.Repository

	Snapshot *SnapshotFallback
	Fallback FallbackSupplier

	IDs        id.Generator
	Logger     *logging.Logger
	MaxWorkers int
	Now        func() time.Time
}

// IngestionService runs the fetch, reconcile, analyze, alert, persist pass.
// RunCycle is idempotent for an unchanged feed and safe to trigger repeatedly.
type IngestionService struct {
	source     FixtureSource
	classifier *LiveClassifier
	reconciler *Reconciler
	engine     *AnalysisEngine
	evaluator  *AlertEvaluator
	metrics    MetricsSource

	matchRepo    match.Repository
	analysisRepo analysis.Repository
	metricsRepo  metrics.Repository
	alertRepo    alert.Repository

	snapshot *SnapshotFallback
	fallback FallbackSupplier

	ids        id.Generator
	logger     *logging.Logger
	maxWorkers int
	now        func() time.Time
}

func NewIngestionService(p IngestionServiceParams) (*IngestionService, error) {
	if p.Source == nil || p.Reconciler == nil || p.Engine == nil || p.Evaluator == nil {
		return nil, fmt.Errorf("%w: ingestion service dependencies missing", ErrConfiguration)
	}
	if p.MatchRepo == nil || p.AnalysisRepo == nil || p.MetricsRepo == nil || p.AlertRepo == nil {
		return nil, fmt.Errorf("%w: ingestion service repositories missing", ErrConfiguration)
	}
	if p.Classifier == nil {
		p.Classifier = NewLiveClassifier(nil)
	}
	if p.Metrics == nil {
		p.Metrics = NewDerivedMetricsSource()
	}
	if p.IDs == nil {
		p.IDs = id.NewRandomGenerator()
	}
	if p.Logger == nil {
		p.Logger = logging.Default()
	}
	if p.MaxWorkers <= 0 {
		p.MaxWorkers = 4
	}
	if p.Now == nil {
		p.Now = time.Now
	}

	return &IngestionService{
		source:       p.Source,
		classifier:   p.Classifier,
		reconciler:   p.Reconciler,
		engine:       p.Engine,
		evaluator:    p.Evaluator,
		metrics:      p.Metrics,
		matchRepo:    p.MatchRepo,
		analysisRepo: p.AnalysisRepo,
		metricsRepo:  p.MetricsRepo,
		alertRepo:    p.AlertRepo,
		snapshot:     p.Snapshot,
		fallback:     p.Fallback,
		ids:          p.IDs,
		logger:       p.Logger,
		maxWorkers:   p.MaxWorkers,
		now:          p.Now,
	}, nil
}

func (s *IngestionService) RunCycle(ctx context.Context) (CycleReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.RunCycle")
	defer span.End()

	startedAt := s.now()
	report := CycleReport{StartedAt: startedAt}

	fixtures, fetchErr := s.source.FetchLive(ctx)
	if fetchErr != nil {
		report.ProviderError = fetchErr.Error()
		s.logger.WarnContext(ctx, "live fixture fetch failed, applying fallback policy", "error", fetchErr)

		fixtures = nil
		if s.fallback != nil {
			if fallbackFixtures, name, ok := s.fallback.Supply(ctx); ok {
				fixtures = fallbackFixtures
				report.FallbackUsed = name
				s.logger.InfoContext(ctx, "fallback fixtures supplied", "source", name, "count", len(fallbackFixtures))
			}
		}
	} else {
		s.snapshot.Record(ctx, fixtures)
	}

	report.FixturesSeen = len(fixtures)

	live := make([]RawFixture, 0, len(fixtures))
	for _, fx := range fixtures {
		if !s.classifier.IsLive(fx.StatusCode) {
			s.logger.DebugContext(ctx, "fixture outside live window", "external_id", fx.ExternalID, "status_code", fx.StatusCode)
			continue
		}
		live = append(live, fx)
	}
	report.LiveProcessed = len(live)

	if len(live) > 0 {
		if err := s.processFixtures(ctx, live, &report); err != nil {
			return report, err
		}
	}

	// Absence from the feed finishes matches only when the fetch itself
	// succeeded. A failed fetch leaves live matches untouched.
	if fetchErr == nil {
		keep := make([]string, 0, len(live))
		for _, fx := range live {
			keep = append(keep, fx.ExternalID)
		}
		finished, err := s.matchRepo.FinishLiveExcept(ctx, keep, s.now())
		if err != nil {
			report.PersistenceErrors++
			s.logger.ErrorContext(ctx, "finishing absent matches failed", "error", err)
		} else {
			report.MatchesFinished = finished
		}
	}

	report.DurationMs = s.now().Sub(startedAt).Milliseconds()
	s.logger.InfoContext(ctx, "ingestion cycle complete",
		"fixtures_seen", report.FixturesSeen,
		"live_processed", report.LiveProcessed,
		"rejected", report.FixturesRejected,
		"created", report.MatchesCreated,
		"updated", report.MatchesUpdated,
		"finished", report.MatchesFinished,
		"alerts", report.AlertsEmitted,
		"persistence_errors", report.PersistenceErrors,
		"provider_error", report.ProviderError,
		"fallback", report.FallbackUsed,
		"duration_ms", report.DurationMs,
	)

	return report, nil
}

type fixtureOutcome struct {
	created          bool
	updated          bool
	alertsEmitted    int
	rejected         bool
	persistenceError bool
}

func (s *IngestionService) processFixtures(ctx context.Context, live []RawFixture, report *CycleReport) error {
	pool, err := ants.NewPool(s.maxWorkers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var mu sync.Mutex
	var workers sync.WaitGroup
	for _, fx := range live {
		fx := fx
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			outcome := s.processFixture(ctx, fx)

			mu.Lock()
			if outcome.created {
				report.MatchesCreated++
			}
			if outcome.updated {
				report.MatchesUpdated++
			}
			report.AlertsEmitted += outcome.alertsEmitted
			if outcome.rejected {
				report.FixturesRejected++
			}
			if outcome.persistenceError {
				report.PersistenceErrors++
			}
			mu.Unlock()
		}); err != nil {
			workers.Done()
			mu.Lock()
			report.PersistenceErrors++
			mu.Unlock()
			s.logger.ErrorContext(ctx, "submitting fixture to worker pool failed", "external_id", fx.ExternalID, "error", err)
		}
	}
	workers.Wait()

	return nil
}

// processFixture runs reconcile, analyze, evaluate, persist for one fixture.
// Write order is match, analysis, metrics, alerts so that the evaluator diffs
// against the previous snapshot before it is overwritten.
func (s *IngestionService) processFixture(ctx context.Context, fx RawFixture) fixtureOutcome {
	now := s.now()

	res, err := s.reconciler.Reconcile(ctx, fx, now)
	if err != nil {
		s.logger.WarnContext(ctx, "fixture rejected by reconcile", "external_id", fx.ExternalID, "error", err)
		return fixtureOutcome{rejected: true}
	}

	m := res.Match
	if res.Created {
		newID, err := s.ids.NewID()
		if err != nil {
			s.logger.ErrorContext(ctx, "id generation failed", "external_id", fx.ExternalID, "error", err)
			return fixtureOutcome{persistenceError: true}
		}
		m.ID = newID
	}

	persisted, created, err := s.matchRepo.UpsertByExternalID(ctx, m)
	if err != nil {
		s.logger.ErrorContext(ctx, "match upsert failed", "external_id", fx.ExternalID, "error", err)
		return fixtureOutcome{persistenceError: true}
	}

	outcome := fixtureOutcome{created: created, updated: !created}

	mm, err := s.matchMetrics(ctx, persisted)
	if err != nil {
		s.logger.ErrorContext(ctx, "metrics collection failed", "match_id", persisted.ID, "error", err)
		return markPersistenceError(outcome)
	}

	current := s.engine.Analyze(persisted, mm, now)
	matchName := persisted.HomeTeam + " vs " + persisted.AwayTeam
	alerts := s.evaluator.Evaluate(matchName, current, res.Previous)

	if err := s.analysisRepo.Upsert(ctx, current); err != nil {
		s.logger.ErrorContext(ctx, "analysis upsert failed", "match_id", persisted.ID, "error", err)
		return markPersistenceError(outcome)
	}

	if _, err := s.metricsRepo.InsertIfMissing(ctx, mm); err != nil {
		s.logger.ErrorContext(ctx, "metrics insert failed", "match_id", persisted.ID, "error", err)
		outcome = markPersistenceError(outcome)
	}

	if len(alerts) > 0 {
		stamped := make([]alert.Alert, 0, len(alerts))
		for _, a := range alerts {
			alertID, err := s.ids.NewID()
			if err != nil {
				s.logger.ErrorContext(ctx, "id generation failed", "match_id", persisted.ID, "error", err)
				return markPersistenceError(outcome)
			}
			a.ID = alertID
			a.CreatedAt = now
			stamped = append(stamped, a)
		}
		if err := s.alertRepo.InsertMany(ctx, stamped); err != nil {
			s.logger.ErrorContext(ctx, "alert insert failed", "match_id", persisted.ID, "error", err)
			return markPersistenceError(outcome)
		}
		outcome.alertsEmitted = len(stamped)
	}

	return outcome
}

func (s *IngestionService) matchMetrics(ctx context.Context, m match.Match) (metrics.Metrics, error) {
	stored, found, err := s.metricsRepo.GetByMatchID(ctx, m.ID)
	if err != nil {
		return metrics.Metrics{}, err
	}
	if found {
		return stored, nil
	}

	collected, err := s.metrics.Collect(ctx, m)
	if err != nil {
		return metrics.Metrics{}, err
	}
	collected.MatchID = m.ID
	return collected, nil
}

func markPersistenceError(o fixtureOutcome) fixtureOutcome {
	o.persistenceError = true
	return o
}
