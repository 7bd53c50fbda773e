package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}


func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("ADMIN_TOKENS", "prod-secret:kak-rina")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "camp-scoreboard-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "camp-scoreboard-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}


func TestLoad_ProdRequiresAdminTokens(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("ADMIN_TOKENS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when APP_ENV=prod without ADMIN_TOKENS")
	}
}

func TestParseAdminTokens(t *testing.T) {
	t.Parallel()

	tokens, err := parseAdminTokens(" alpha-secret:kak-rina , beta-secret:kak-bima ")
	if err != nil {
		t.Fatalf("parse admin tokens: %v", err)
	}
	if len(tokens) != 2 || tokens["alpha-secret"] != "kak-rina" || tokens["beta-secret"] != "kak-bima" {
		t.Fatalf("unexpected tokens: %+v", tokens)
	}

	empty, err := parseAdminTokens("")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty map, got %+v err=%v", empty, err)
	}

	for _, raw := range []string{"no-identity", "secret:", ":kak-rina", "dup:a,dup:b"} {
		if _, err := parseAdminTokens(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseAdminTokens_ErrorDoesNotLeakToken(t *testing.T) {
	t.Parallel()

	_, err := parseAdminTokens("supersecretvalue")
	if err == nil {
		t.Fatalf("expected error")
	}
	if strings.Contains(err.Error(), "supersecretvalue") {
		t.Fatalf("error leaks token: %v", err)
	}
}

func TestLoad_ScoringDefaultsAndLimits(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.ScoringIndividualLimit != 1000 || cfg.ScoringTeamLimit != 10000 {
			t.Fatalf("unexpected scoring limits: %d/%d", cfg.ScoringIndividualLimit, cfg.ScoringTeamLimit)
		}
		if cfg.ScoringReasonMaxLength != 500 {
			t.Fatalf("unexpected reason max length: %d", cfg.ScoringReasonMaxLength)
		}
		if cfg.RecentEntriesDefaultLimit != 10 || cfg.ReconcileWorkers != 4 {
			t.Fatalf("unexpected recent/reconcile defaults: %d/%d", cfg.RecentEntriesDefaultLimit, cfg.ReconcileWorkers)
		}
		if cfg.Location == nil || cfg.Location.String() != "UTC" {
			t.Fatalf("expected UTC location by default, got %v", cfg.Location)
		}
		if cfg.UsesDatabase() {
			t.Fatalf("expected memory store when DB_URL is empty")
		}
	})

	t.Run("zero individual limit", func(t *testing.T) {
		t.Setenv("SCORING_INDIVIDUAL_LIMIT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SCORING_INDIVIDUAL_LIMIT=0")
		}
	})

	t.Run("recent limit above cap", func(t *testing.T) {
		t.Setenv("RECENT_ENTRIES_DEFAULT_LIMIT", "101")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for RECENT_ENTRIES_DEFAULT_LIMIT=101")
		}
	})

	t.Run("unknown timezone", func(t *testing.T) {
		t.Setenv("APP_TIMEZONE", "Mars/Olympus")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown APP_TIMEZONE")
		}
	})
}

func TestLoad_EventsConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("EVENTS_WEBHOOK_URL", " https://hooks.example.com/scoreboard ")
	t.Setenv("EVENTS_WEBHOOK_TIMEOUT", "2s")
	t.Setenv("EVENTS_CIRCUIT_FAILURE_COUNT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.EventsWebhookURL != "https://hooks.example.com/scoreboard" {
		t.Fatalf("unexpected webhook url: %q", cfg.EventsWebhookURL)
	}
	if cfg.EventsWebhookTimeout != 2*time.Second {
		t.Fatalf("unexpected webhook timeout: %s", cfg.EventsWebhookTimeout)
	}
	if !cfg.EventsCircuitEnabled || cfg.EventsCircuitFailureCount != 3 {
		t.Fatalf("unexpected circuit config: enabled=%v failures=%d", cfg.EventsCircuitEnabled, cfg.EventsCircuitFailureCount)
	}
	if cfg.EventsCircuitOpenTimeout != 15*time.Second || cfg.EventsCircuitHalfOpenMaxReq != 2 {
		t.Fatalf("unexpected circuit defaults: %s/%d", cfg.EventsCircuitOpenTimeout, cfg.EventsCircuitHalfOpenMaxReq)
	}

	t.Run("invalid failure count", func(t *testing.T) {
		t.Setenv("EVENTS_CIRCUIT_FAILURE_COUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for EVENTS_CIRCUIT_FAILURE_COUNT=0")
		}
	})
}

func TestParseUptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Parallel()

	got := parseUptraceDSNFromOTLPHeaders(`foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)
	if got != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected dsn: %q", got)
	}
	if parseUptraceDSNFromOTLPHeaders("foo=bar") != "" {
		t.Fatalf("expected empty dsn without uptrace-dsn header")
	}
}
