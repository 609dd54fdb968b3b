package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rmarchetti/livevalue/external/apifootball"
	"github.com/rmarchetti/livevalue/internal/config"
	"github.com/rmarchetti/livevalue/internal/domain/alert"
	"github.com/rmarchetti/livevalue/internal/domain/analysis"
	"github.com/rmarchetti/livevalue/internal/domain/match"
	"github.com/rmarchetti/livevalue/internal/domain/metrics"
	"github.com/rmarchetti/livevalue/internal/infrastructure/jobqueue"
	"github.com/rmarchetti/livevalue/internal/infrastructure/repository/memory"
	"github.com/rmarchetti/livevalue/internal/infrastructure/repository/postgres"
	"github.com/rmarchetti/livevalue/internal/interfaces/httpapi"
	"github.com/rmarchetti/livevalue/internal/platform/cache"
	idgen "github.com/rmarchetti/livevalue/internal/platform/id"
	"github.com/rmarchetti/livevalue/internal/platform/logging"
	"github.com/rmarchetti/livevalue/internal/platform/resilience"
	"github.com/rmarchetti/livevalue/internal/usecase"
)

// CloseFunc releases resources held by the server wiring.
type CloseFunc func(context.Context) error

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, CloseFunc, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		matchRepo    match.Repository
		analysisRepo analysis.Repository
		metricsRepo  metrics.Repository
		alertRepo    alert.Repository
		closeDB      = func(context.Context) error { return nil }
	)

	if cfg.DBURL != "" {
		db, err := openDB(cfg.DBURL)
		if err != nil {
			return nil, nil, err
		}
		matchRepo = postgres.NewMatchRepository(db)
		analysisRepo = postgres.NewAnalysisRepository(db)
		metricsRepo = postgres.NewMetricsRepository(db)
		alertRepo = postgres.NewAlertRepository(db)
		closeDB = func(context.Context) error { return db.Close() }
	} else {
		logger.Warn("DB_URL not set, using in-memory repositories")
		matchRepo = memory.NewMatchRepository()
		analysisRepo = memory.NewAnalysisRepository()
		metricsRepo = memory.NewMetricsRepository()
		alertRepo = memory.NewAlertRepository()
	}

	engine, err := usecase.NewAnalysisEngine(analysisConfigFrom(cfg), usecase.NewMetricsEdgeModel())
	if err != nil {
		return nil, nil, fmt.Errorf("build analysis engine: %w", err)
	}
	evaluator, err := usecase.NewAlertEvaluator(alertConfigFrom(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("build alert evaluator: %w", err)
	}

	classifier := usecase.NewLiveClassifier(cfg.LiveStatusCodes)
	snapshot := usecase.NewSnapshotFallback(cache.NewStore(cfg.SnapshotTTL), cfg.SnapshotMaxAge)

	var synthetic *usecase.SyntheticFixtureSource
	fallbacks := []usecase.FallbackSupplier{snapshot}
	if cfg.SyntheticEnabled {
		synthetic = usecase.NewSyntheticFixtureSource(cfg.SyntheticSeed, cfg.SyntheticCount)
		fallbacks = append(fallbacks, synthetic)
	}

	source, err := buildFixtureSource(cfg, synthetic, logger)
	if err != nil {
		return nil, nil, err
	}

	ingestionService, err := usecase.NewIngestionService(usecase.IngestionServiceParams{
		Source:       source,
		Classifier:   classifier,
		Reconciler:   usecase.NewReconciler(matchRepo, analysisRepo),
		Engine:       engine,
		Evaluator:    evaluator,
		MatchRepo:    matchRepo,
		AnalysisRepo: analysisRepo,
		MetricsRepo:  metricsRepo,
		AlertRepo:    alertRepo,
		Snapshot:     snapshot,
		Fallback:     usecase.NewFallbackChain(fallbacks...),
		IDs:          idgen.NewRandomGenerator(),
		Logger:       logger,
		MaxWorkers:   cfg.IngestionMaxWorkers,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build ingestion service: %w", err)
	}

	queryService := usecase.NewQueryService(matchRepo, analysisRepo, metricsRepo, alertRepo)

	var scheduler httpapi.JobScheduler
	if cfg.QStashEnabled {
		scheduler = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
		}, logger)
	}

	handler := httpapi.NewHandler(ingestionService, queryService, scheduler, cfg.JobLiveInterval, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, closeDB, nil
}

func buildFixtureSource(cfg config.Config, synthetic *usecase.SyntheticFixtureSource, logger *logging.Logger) (usecase.FixtureSource, error) {
	if cfg.ProviderEnabled {
		return apifootball.NewClient(apifootball.ClientConfig{
			BaseURL:    cfg.ProviderBaseURL,
			Token:      cfg.ProviderToken,
			Timeout:    cfg.ProviderTimeout,
			MaxRetries: cfg.ProviderMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.ProviderCircuitEnabled,
				FailureThreshold: cfg.ProviderCircuitFailureCount,
				OpenTimeout:      cfg.ProviderCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.ProviderCircuitHalfOpenMaxReq,
			},
		}), nil
	}

	if synthetic != nil {
		logger.Warn("provider disabled, serving synthetic fixtures")
		return usecase.SourceFromSupplier(synthetic), nil
	}

	return nil, fmt.Errorf("no fixture source: enable APIFOOTBALL_ENABLED or SYNTHETIC_FIXTURES_ENABLED")
}

func analysisConfigFrom(cfg config.Config) usecase.AnalysisConfig {
	return usecase.AnalysisConfig{
		Baseline:            cfg.AnalysisBaseline,
		GoalPenalty:         cfg.AnalysisGoalPenalty,
		TimePenalty:         cfg.AnalysisTimePenalty,
		MinProbability:      cfg.AnalysisMinProbability,
		MaxProbability:      cfg.AnalysisMaxProbability,
		OddsFloor:           cfg.AnalysisOddsFloor,
		OddsGoalFactor:      cfg.AnalysisOddsGoalFactor,
		EnterThreshold:      cfg.AnalysisEnterThreshold,
		AvoidThreshold:      cfg.AnalysisAvoidThreshold,
		ConfidenceThreshold: cfg.AnalysisConfidenceThreshold,
		RatingWeight:        cfg.AnalysisRatingWeight,
	}
}

func alertConfigFrom(cfg config.Config) usecase.AlertConfig {
	return usecase.AlertConfig{
		HighEVThreshold:          cfg.AlertHighEVThreshold,
		EntryEVThreshold:         cfg.AlertEntryEVThreshold,
		OddsSwingRatio:           cfg.AlertOddsSwingRatio,
		EVImprovementDelta:       cfg.AlertEVImprovementDelta,
		HighProbabilityThreshold: cfg.AlertHighProbabilityThreshold,
	}
}
