package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                      string
	ServiceName                 string
	ServiceVersion              string
	HTTPAddr                    string
	ReadTimeout                 time.Duration
	WriteTimeout                time.Duration
	Location                    *time.Location
	LogLevel                    logging.Level
	DBURL                       string
	DBDisablePreparedBinary     bool
	DBMaxOpenConns              int
	CacheEnabled                bool
	CacheTTL                    time.Duration
	CORSAllowedOrigins          []string
	SwaggerEnabled              bool
	AdminTokens                 map[string]string
	InternalJobToken            string
	ScoringIndividualLimit      int64
	ScoringTeamLimit            int64
	ScoringReasonMaxLength      int
	RecentEntriesDefaultLimit   int
	ReconcileWorkers            int
	EventsWebhookURL            string
	EventsWebhookToken          string
	EventsWebhookTimeout        time.Duration
	EventsCircuitEnabled        bool
	EventsCircuitFailureCount   int
	EventsCircuitOpenTimeout    time.Duration
	EventsCircuitHalfOpenMaxReq int
	MetricsEnabled              bool
	UptraceEnabled              bool
	UptraceDSN                  string
	UptraceLogsEnabled          bool
	PyroscopeEnabled            bool
	PyroscopeServerAddress      string
	PyroscopeAppName            string
	PyroscopeAuthToken          string
	PyroscopeBasicAuthUser      string
	PyroscopeBasicAuthPassword  string
	PyroscopeUploadRate         time.Duration
	PprofEnabled                bool
	PprofAddr                   string
}

// UsesDatabase reports whether a Postgres store is configured. Without one
// the service runs on the in-memory store seeded with the demo camp.
func (c Config) UsesDatabase() bool {
	return strings.TrimSpace(c.DBURL) != ""
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}
	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	location, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_TIMEZONE: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if dbMaxOpenConns < 1 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	adminTokens, err := parseAdminTokens(getEnv("ADMIN_TOKENS", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse ADMIN_TOKENS: %w", err)
	}
	if appEnv == EnvProd && len(adminTokens) == 0 {
		return Config{}, fmt.Errorf("ADMIN_TOKENS is required when APP_ENV=%s", EnvProd)
	}

	individualLimit, err := getEnvAsInt64("SCORING_INDIVIDUAL_LIMIT", 1000)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCORING_INDIVIDUAL_LIMIT: %w", err)
	}
	teamLimit, err := getEnvAsInt64("SCORING_TEAM_LIMIT", 10000)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCORING_TEAM_LIMIT: %w", err)
	}
	if individualLimit < 1 || teamLimit < 1 {
		return Config{}, fmt.Errorf("SCORING_INDIVIDUAL_LIMIT and SCORING_TEAM_LIMIT must be >= 1")
	}
	reasonMaxLength, err := getEnvAsInt("SCORING_REASON_MAX_LENGTH", 500)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCORING_REASON_MAX_LENGTH: %w", err)
	}
	if reasonMaxLength < 1 {
		return Config{}, fmt.Errorf("SCORING_REASON_MAX_LENGTH must be >= 1")
	}
	recentLimit, err := getEnvAsInt("RECENT_ENTRIES_DEFAULT_LIMIT", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECENT_ENTRIES_DEFAULT_LIMIT: %w", err)
	}
	if recentLimit < 1 || recentLimit > 100 {
		return Config{}, fmt.Errorf("RECENT_ENTRIES_DEFAULT_LIMIT must be between 1 and 100")
	}
	reconcileWorkers, err := getEnvAsInt("RECONCILE_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECONCILE_WORKERS: %w", err)
	}
	if reconcileWorkers < 1 {
		return Config{}, fmt.Errorf("RECONCILE_WORKERS must be >= 1")
	}

	eventsWebhookTimeout, err := time.ParseDuration(getEnv("EVENTS_WEBHOOK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENTS_WEBHOOK_TIMEOUT: %w", err)
	}
	if eventsWebhookTimeout <= 0 {
		return Config{}, fmt.Errorf("EVENTS_WEBHOOK_TIMEOUT must be > 0")
	}
	eventsCircuitEnabled, err := strconv.ParseBool(getEnv("EVENTS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENTS_CIRCUIT_ENABLED: %w", err)
	}
	eventsCircuitFailureCount, err := getEnvAsInt("EVENTS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENTS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if eventsCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("EVENTS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	eventsCircuitOpenTimeout, err := time.ParseDuration(getEnv("EVENTS_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENTS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if eventsCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("EVENTS_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	eventsCircuitHalfOpenMaxReq, err := getEnvAsInt("EVENTS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENTS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if eventsCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("EVENTS_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("APP_SERVICE_NAME", "camp-scoreboard"),
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                    getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                 readTimeout,
		WriteTimeout:                writeTimeout,
		Location:                    location,
		LogLevel:                    logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		DBURL:                       strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:     dbDisablePreparedBinary,
		DBMaxOpenConns:              dbMaxOpenConns,
		CacheEnabled:                cacheEnabled,
		CacheTTL:                    cacheTTL,
		CORSAllowedOrigins:          splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:              swaggerEnabled,
		AdminTokens:                 adminTokens,
		InternalJobToken:            strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		ScoringIndividualLimit:      individualLimit,
		ScoringTeamLimit:            teamLimit,
		ScoringReasonMaxLength:      reasonMaxLength,
		RecentEntriesDefaultLimit:   recentLimit,
		ReconcileWorkers:            reconcileWorkers,
		EventsWebhookURL:            strings.TrimSpace(getEnv("EVENTS_WEBHOOK_URL", "")),
		EventsWebhookToken:          strings.TrimSpace(getEnv("EVENTS_WEBHOOK_TOKEN", "")),
		EventsWebhookTimeout:        eventsWebhookTimeout,
		EventsCircuitEnabled:        eventsCircuitEnabled,
		EventsCircuitFailureCount:   eventsCircuitFailureCount,
		EventsCircuitOpenTimeout:    eventsCircuitOpenTimeout,
		EventsCircuitHalfOpenMaxReq: eventsCircuitHalfOpenMaxReq,
		MetricsEnabled:              metricsEnabled,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		UptraceLogsEnabled:          uptraceLogsEnabled,
		PyroscopeEnabled:            pyroscopeEnabled,
		PyroscopeServerAddress:      pyroscopeServerAddress,
		PyroscopeAuthToken:          strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:      strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:  strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:         pyroscopeUploadRate,
		PprofEnabled:                pprofEnabled,
		PprofAddr:                   pprofAddr,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	return cfg, nil
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

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.ParseInt(value, 10, 64)
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

// parseAdminTokens reads "token:identity,token:identity".
func parseAdminTokens(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, item := range splitCSV(raw) {
		token, identity, ok := strings.Cut(item, ":")
		token = strings.TrimSpace(token)
		identity = strings.TrimSpace(identity)
		if !ok || token == "" || identity == "" {
			return nil, fmt.Errorf("invalid item %q, expected token:identity", redactToken(item))
		}
		if _, exists := out[token]; exists {
			return nil, fmt.Errorf("duplicate token for identity %q", identity)
		}
		out[token] = identity
	}
	return out, nil
}

func redactToken(item string) string {
	token, identity, _ := strings.Cut(item, ":")
	if len(token) <= 4 {
		return "****:" + identity
	}
	return token[:4] + "****:" + identity
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
