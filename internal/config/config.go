package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rmarchetti/livevalue/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level
	DBURL              string

	ProviderEnabled               bool
	ProviderBaseURL               string
	ProviderToken                 string
	ProviderTimeout               time.Duration
	ProviderMaxRetries            int
	ProviderCircuitEnabled        bool
	ProviderCircuitFailureCount   int
	ProviderCircuitOpenTimeout    time.Duration
	ProviderCircuitHalfOpenMaxReq int
	LiveStatusCodes               []string

	AnalysisBaseline            float64
	AnalysisGoalPenalty         float64
	AnalysisTimePenalty         float64
	AnalysisMinProbability      float64
	AnalysisMaxProbability      float64
	AnalysisOddsFloor           float64
	AnalysisOddsGoalFactor      float64
	AnalysisEnterThreshold      float64
	AnalysisAvoidThreshold      float64
	AnalysisConfidenceThreshold float64
	AnalysisRatingWeight        float64

	AlertHighEVThreshold          float64
	AlertEntryEVThreshold         float64
	AlertOddsSwingRatio           float64
	AlertEVImprovementDelta       float64
	AlertHighProbabilityThreshold float64

	IngestionMaxWorkers int
	SnapshotTTL         time.Duration
	SnapshotMaxAge      time.Duration
	SyntheticEnabled    bool
	SyntheticSeed       int64
	SyntheticCount      int

	InternalJobToken    string
	QStashEnabled       bool
	QStashBaseURL       string
	QStashToken         string
	QStashTargetBaseURL string
	QStashRetries       int
	JobLiveInterval     time.Duration

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_WRITE_TIMEOUT: %w", err)
	}

	providerEnabled, err := strconv.ParseBool(getEnv("APIFOOTBALL_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_ENABLED: %w", err)
	}
	providerToken := strings.TrimSpace(getEnv("APIFOOTBALL_TOKEN", ""))
	if providerEnabled && providerToken == "" {
		return Config{}, fmt.Errorf("APIFOOTBALL_TOKEN is required when APIFOOTBALL_ENABLED=true")
	}
	providerTimeout, err := getEnvAsDuration("APIFOOTBALL_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_TIMEOUT: %w", err)
	}
	if providerTimeout <= 0 {
		return Config{}, fmt.Errorf("APIFOOTBALL_TIMEOUT must be > 0")
	}
	providerMaxRetries, err := getEnvAsInt("APIFOOTBALL_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_MAX_RETRIES: %w", err)
	}
	if providerMaxRetries < 0 {
		return Config{}, fmt.Errorf("APIFOOTBALL_MAX_RETRIES must be >= 0")
	}
	providerCircuitEnabled, err := strconv.ParseBool(getEnv("APIFOOTBALL_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_CIRCUIT_ENABLED: %w", err)
	}
	providerCircuitFailureCount, err := getEnvAsInt("APIFOOTBALL_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	providerCircuitOpenTimeout, err := getEnvAsDuration("APIFOOTBALL_CIRCUIT_OPEN_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	providerCircuitHalfOpenMaxReq, err := getEnvAsInt("APIFOOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	liveStatusCodes := splitCSV(getEnv("LIVE_STATUS_CODES", "1H,2H,HT,ET,BT,P,SUSP,INT"))
	if len(liveStatusCodes) == 0 {
		return Config{}, fmt.Errorf("LIVE_STATUS_CODES must not be empty")
	}

	analysis, err := loadAnalysisThresholds()
	if err != nil {
		return Config{}, err
	}

	alerts, err := loadAlertThresholds()
	if err != nil {
		return Config{}, err
	}

	ingestionMaxWorkers, err := getEnvAsInt("INGESTION_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse INGESTION_MAX_WORKERS: %w", err)
	}
	if ingestionMaxWorkers <= 0 {
		return Config{}, fmt.Errorf("INGESTION_MAX_WORKERS must be > 0")
	}
	snapshotTTL, err := getEnvAsDuration("SNAPSHOT_TTL", 10*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("parse SNAPSHOT_TTL: %w", err)
	}
	snapshotMaxAge, err := getEnvAsDuration("SNAPSHOT_MAX_AGE", 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("parse SNAPSHOT_MAX_AGE: %w", err)
	}
	syntheticEnabled, err := strconv.ParseBool(getEnv("SYNTHETIC_FIXTURES_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNTHETIC_FIXTURES_ENABLED: %w", err)
	}
	syntheticSeed, err := getEnvAsInt("SYNTHETIC_FIXTURES_SEED", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNTHETIC_FIXTURES_SEED: %w", err)
	}
	syntheticCount, err := getEnvAsInt("SYNTHETIC_FIXTURES_COUNT", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNTHETIC_FIXTURES_COUNT: %w", err)
	}

	internalJobToken := strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", ""))

	qstashEnabled, err := strconv.ParseBool(getEnv("QSTASH_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_ENABLED: %w", err)
	}
	qstashBaseURL := strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io"))
	qstashToken := strings.TrimSpace(getEnv("QSTASH_TOKEN", ""))
	qstashTargetBaseURL := strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", ""))
	if qstashEnabled {
		if qstashToken == "" {
			return Config{}, fmt.Errorf("QSTASH_TOKEN is required when QSTASH_ENABLED=true")
		}
		if qstashTargetBaseURL == "" {
			return Config{}, fmt.Errorf("QSTASH_TARGET_BASE_URL is required when QSTASH_ENABLED=true")
		}
		if internalJobToken == "" {
			return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when QSTASH_ENABLED=true")
		}
	}
	qstashRetries, err := getEnvAsInt("QSTASH_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	jobLiveInterval, err := getEnvAsDuration("JOB_LIVE_INTERVAL", time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("parse JOB_LIVE_INTERVAL: %w", err)
	}
	if jobLiveInterval <= 0 {
		return Config{}, fmt.Errorf("JOB_LIVE_INTERVAL must be > 0")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}

	serviceName := strings.TrimSpace(getEnv("SERVICE_NAME", "livevalue"))

	return Config{
		AppEnv:             appEnv,
		ServiceName:        serviceName,
		ServiceVersion:     strings.TrimSpace(getEnv("SERVICE_VERSION", "dev")),
		HTTPAddr:           strings.TrimSpace(getEnv("HTTP_ADDR", ":8080")),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		DBURL:              strings.TrimSpace(getEnv("DB_URL", "")),

		ProviderEnabled:               providerEnabled,
		ProviderBaseURL:               strings.TrimSpace(getEnv("APIFOOTBALL_BASE_URL", "")),
		ProviderToken:                 providerToken,
		ProviderTimeout:               providerTimeout,
		ProviderMaxRetries:            providerMaxRetries,
		ProviderCircuitEnabled:        providerCircuitEnabled,
		ProviderCircuitFailureCount:   providerCircuitFailureCount,
		ProviderCircuitOpenTimeout:    providerCircuitOpenTimeout,
		ProviderCircuitHalfOpenMaxReq: providerCircuitHalfOpenMaxReq,
		LiveStatusCodes:               liveStatusCodes,

		AnalysisBaseline:            analysis.baseline,
		AnalysisGoalPenalty:         analysis.goalPenalty,
		AnalysisTimePenalty:         analysis.timePenalty,
		AnalysisMinProbability:      analysis.minProbability,
		AnalysisMaxProbability:      analysis.maxProbability,
		AnalysisOddsFloor:           analysis.oddsFloor,
		AnalysisOddsGoalFactor:      analysis.oddsGoalFactor,
		AnalysisEnterThreshold:      analysis.enterThreshold,
		AnalysisAvoidThreshold:      analysis.avoidThreshold,
		AnalysisConfidenceThreshold: analysis.confidenceThreshold,
		AnalysisRatingWeight:        analysis.ratingWeight,

		AlertHighEVThreshold:          alerts.highEV,
		AlertEntryEVThreshold:         alerts.entryEV,
		AlertOddsSwingRatio:           alerts.oddsSwing,
		AlertEVImprovementDelta:       alerts.evImprovement,
		AlertHighProbabilityThreshold: alerts.highProbability,

		IngestionMaxWorkers: ingestionMaxWorkers,
		SnapshotTTL:         snapshotTTL,
		SnapshotMaxAge:      snapshotMaxAge,
		SyntheticEnabled:    syntheticEnabled,
		SyntheticSeed:       int64(syntheticSeed),
		SyntheticCount:      syntheticCount,

		InternalJobToken:    internalJobToken,
		QStashEnabled:       qstashEnabled,
		QStashBaseURL:       qstashBaseURL,
		QStashToken:         qstashToken,
		QStashTargetBaseURL: qstashTargetBaseURL,
		QStashRetries:       qstashRetries,
		JobLiveInterval:     jobLiveInterval,

		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAppName:           strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", serviceName)),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
	}, nil
}

type analysisThresholds struct {
	baseline            float64
	goalPenalty         float64
	timePenalty         float64
	minProbability      float64
	maxProbability      float64
	oddsFloor           float64
	oddsGoalFactor      float64
	enterThreshold      float64
	avoidThreshold      float64
	confidenceThreshold float64
	ratingWeight        float64
}

func loadAnalysisThresholds() (analysisThresholds, error) {
	out := analysisThresholds{}
	fields := []struct {
		key      string
		fallback float64
		target   *float64
	}{
		{"ANALYSIS_BASELINE", 85, &out.baseline},
		{"ANALYSIS_GOAL_PENALTY", 15, &out.goalPenalty},
		{"ANALYSIS_TIME_PENALTY", 0.2, &out.timePenalty},
		{"ANALYSIS_MIN_PROBABILITY", 20, &out.minProbability},
		{"ANALYSIS_MAX_PROBABILITY", 95, &out.maxProbability},
		{"ANALYSIS_ODDS_FLOOR", 1.2, &out.oddsFloor},
		{"ANALYSIS_ODDS_GOAL_FACTOR", 0.3, &out.oddsGoalFactor},
		{"ANALYSIS_ENTER_THRESHOLD", 5, &out.enterThreshold},
		{"ANALYSIS_AVOID_THRESHOLD", -5, &out.avoidThreshold},
		{"ANALYSIS_CONFIDENCE_THRESHOLD", 70, &out.confidenceThreshold},
		{"ANALYSIS_RATING_WEIGHT", 0.8, &out.ratingWeight},
	}

	for _, field := range fields {
		value, err := getEnvAsFloat(field.key, field.fallback)
		if err != nil {
			return analysisThresholds{}, fmt.Errorf("parse %s: %w", field.key, err)
		}
		*field.target = value
	}

	if out.maxProbability <= out.minProbability {
		return analysisThresholds{}, fmt.Errorf("ANALYSIS_MAX_PROBABILITY must be > ANALYSIS_MIN_PROBABILITY")
	}
	if out.oddsFloor <= 1.0 {
		return analysisThresholds{}, fmt.Errorf("ANALYSIS_ODDS_FLOOR must be > 1.0")
	}
	if out.enterThreshold <= out.avoidThreshold {
		return analysisThresholds{}, fmt.Errorf("ANALYSIS_ENTER_THRESHOLD must be > ANALYSIS_AVOID_THRESHOLD")
	}

	return out, nil
}

type alertThresholds struct {
	highEV          float64
	entryEV         float64
	oddsSwing       float64
	evImprovement   float64
	highProbability float64
}

func loadAlertThresholds() (alertThresholds, error) {
	out := alertThresholds{}
	fields := []struct {
		key      string
		fallback float64
		target   *float64
	}{
		{"ALERT_HIGH_EV_THRESHOLD", 10, &out.highEV},
		{"ALERT_ENTRY_EV_THRESHOLD", 5, &out.entryEV},
		{"ALERT_ODDS_SWING_RATIO", 0.05, &out.oddsSwing},
		{"ALERT_EV_IMPROVEMENT_DELTA", 3, &out.evImprovement},
		{"ALERT_HIGH_PROBABILITY_THRESHOLD", 85, &out.highProbability},
	}

	for _, field := range fields {
		value, err := getEnvAsFloat(field.key, field.fallback)
		if err != nil {
			return alertThresholds{}, fmt.Errorf("parse %s: %w", field.key, err)
		}
		if value <= 0 {
			return alertThresholds{}, fmt.Errorf("%s must be > 0", field.key)
		}
		*field.target = value
	}

	return out, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseAppEnv(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case EnvDev, EnvStage, EnvProd:
		return v, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return time.ParseDuration(value)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
