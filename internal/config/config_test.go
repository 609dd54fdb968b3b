package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected default http addr: %q", cfg.HTTPAddr)
	}
	if cfg.ProviderEnabled {
		t.Fatalf("expected provider disabled by default")
	}
	if cfg.IngestionMaxWorkers != 4 {
		t.Fatalf("unexpected default ingestion workers: %d", cfg.IngestionMaxWorkers)
	}
	if cfg.JobLiveInterval != time.Minute {
		t.Fatalf("unexpected default job live interval: %s", cfg.JobLiveInterval)
	}
	if len(cfg.LiveStatusCodes) != 8 {
		t.Fatalf("unexpected default live status codes: %+v", cfg.LiveStatusCodes)
	}
	if cfg.AnalysisBaseline != 85 {
		t.Fatalf("unexpected default analysis baseline: %v", cfg.AnalysisBaseline)
	}
	if cfg.AlertHighEVThreshold != 10 {
		t.Fatalf("unexpected default high EV threshold: %v", cfg.AlertHighEVThreshold)
	}
}

func TestLoad_ProviderRequiresTokenWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APIFOOTBALL_ENABLED", "true")
	t.Setenv("APIFOOTBALL_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when APIFOOTBALL_ENABLED=true without APIFOOTBALL_TOKEN")
	}
}

func TestLoad_ProviderConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APIFOOTBALL_ENABLED", "true")
	t.Setenv("APIFOOTBALL_TOKEN", "token-123")
	t.Setenv("APIFOOTBALL_TIMEOUT", "8s")
	t.Setenv("APIFOOTBALL_MAX_RETRIES", "3")
	t.Setenv("LIVE_STATUS_CODES", " 1h, 2H ,ht ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ProviderToken != "token-123" {
		t.Fatalf("unexpected provider token")
	}
	if cfg.ProviderTimeout != 8*time.Second {
		t.Fatalf("unexpected provider timeout: %s", cfg.ProviderTimeout)
	}
	if cfg.ProviderMaxRetries != 3 {
		t.Fatalf("unexpected provider retries: %d", cfg.ProviderMaxRetries)
	}
	if len(cfg.LiveStatusCodes) != 3 || cfg.LiveStatusCodes[0] != "1h" {
		t.Fatalf("unexpected live status codes: %+v", cfg.LiveStatusCodes)
	}
}

func TestLoad_ThresholdValidation(t *testing.T) {
	t.Run("enter must exceed avoid", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("ANALYSIS_ENTER_THRESHOLD", "-10")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when enter threshold <= avoid threshold")
		}
	})

	t.Run("odds floor must exceed one", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("ANALYSIS_ODDS_FLOOR", "0.9")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for odds floor <= 1.0")
		}
	})

	t.Run("alert thresholds must be positive", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("ALERT_ODDS_SWING_RATIO", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for zero odds swing ratio")
		}
	})

	t.Run("invalid float value", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("ANALYSIS_BASELINE", "not-a-number")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid ANALYSIS_BASELINE")
		}
	})
}

func TestLoad_QStashConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("QSTASH_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.QStashEnabled {
			t.Fatalf("expected QStashEnabled=false by default")
		}
	})

	t.Run("enabled requires token and target and internal token", func(t *testing.T) {
		t.Setenv("QSTASH_ENABLED", "true")
		t.Setenv("QSTASH_TOKEN", "")
		t.Setenv("QSTASH_TARGET_BASE_URL", "")
		t.Setenv("INTERNAL_JOB_TOKEN", "")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when QSTASH_ENABLED=true without required env")
		}
	})

	t.Run("enabled with required values", func(t *testing.T) {
		t.Setenv("QSTASH_ENABLED", "true")
		t.Setenv("QSTASH_TOKEN", "qstash-token")
		t.Setenv("QSTASH_TARGET_BASE_URL", "https://livevalue.fly.dev")
		t.Setenv("INTERNAL_JOB_TOKEN", "internal-job-token")
		t.Setenv("QSTASH_RETRIES", "2")
		t.Setenv("JOB_LIVE_INTERVAL", "30s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.QStashEnabled {
			t.Fatalf("expected QStashEnabled=true")
		}
		if cfg.QStashRetries != 2 {
			t.Fatalf("unexpected qstash retries: %d", cfg.QStashRetries)
		}
		if cfg.JobLiveInterval != 30*time.Second {
			t.Fatalf("unexpected job live interval: %s", cfg.JobLiveInterval)
		}
	})
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SERVICE_NAME", "livevalue-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "livevalue-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}
