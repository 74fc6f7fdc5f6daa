package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/logging"
)

const (
	ProviderFBref = "fbref"
	ProviderFile  = "file"
	ProviderNone  = "none"
)

// Config stores runtime configuration for the service and the CLI.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	Platform           string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level
	CORSAllowedOrigins []string
	ResultCacheTTL     time.Duration
	MetricsEnabled     bool

	AliasFile              string
	StatsProvider          string
	StatsDataDir           string
	StatsSourceLabel       string
	StatsPreloadCategories []stattable.Category
	StatsPreloadWorkers    int
	DatasetFetchTimeout    time.Duration
	DatasetRetryCooldown   time.Duration

	FBrefBaseURL               string
	FBrefCompID                string
	FBrefCompSlug              string
	FBrefLeague                string
	FBrefSeason                string
	FBrefRequestsPerSecond     float64
	FBrefBurst                 int
	FBrefTimeout               time.Duration
	FBrefMaxRetries            int
	FBrefRetryBackoff          time.Duration
	FBrefUserAgent             string
	FBrefCircuitEnabled        bool
	FBrefCircuitFailureCount   int
	FBrefCircuitOpenTimeout    time.Duration
	FBrefCircuitHalfOpenMaxReq int

	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	// Cold queries may wait on several upstream pages, so the write timeout
	// has to cover DATASET_FETCH_TIMEOUT.
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "90s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	resultCacheTTL, err := time.ParseDuration(getEnv("RESULT_CACHE_TTL", "30m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RESULT_CACHE_TTL: %w", err)
	}
	if resultCacheTTL <= 0 {
		return Config{}, fmt.Errorf("RESULT_CACHE_TTL must be > 0")
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	statsProvider, err := parseStatsProvider(getEnv("STATS_PROVIDER", ProviderFBref))
	if err != nil {
		return Config{}, err
	}
	statsDataDir := strings.TrimSpace(getEnv("STATS_DATA_DIR", ""))
	if statsProvider == ProviderFile && statsDataDir == "" {
		return Config{}, fmt.Errorf("STATS_DATA_DIR is required when STATS_PROVIDER=file")
	}

	preloadCategories, err := stattable.ParseCategories(splitCSV(getEnv("STATS_PRELOAD_CATEGORIES", "standard,passing,shooting,keeper")))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_PRELOAD_CATEGORIES: %w", err)
	}
	preloadWorkers, err := getEnvAsInt("STATS_PRELOAD_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_PRELOAD_WORKERS: %w", err)
	}
	if preloadWorkers < 1 {
		return Config{}, fmt.Errorf("STATS_PRELOAD_WORKERS must be >= 1")
	}

	datasetFetchTimeout, err := time.ParseDuration(getEnv("DATASET_FETCH_TIMEOUT", "45s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DATASET_FETCH_TIMEOUT: %w", err)
	}
	if datasetFetchTimeout <= 0 {
		return Config{}, fmt.Errorf("DATASET_FETCH_TIMEOUT must be > 0")
	}
	datasetRetryCooldown, err := time.ParseDuration(getEnv("DATASET_RETRY_COOLDOWN", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DATASET_RETRY_COOLDOWN: %w", err)
	}
	if datasetRetryCooldown < 0 {
		return Config{}, fmt.Errorf("DATASET_RETRY_COOLDOWN must be >= 0")
	}

	fbrefRPS, err := strconv.ParseFloat(getEnv("FBREF_RPS", "0.25"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_RPS: %w", err)
	}
	if fbrefRPS < 0 {
		return Config{}, fmt.Errorf("FBREF_RPS must be >= 0")
	}
	fbrefBurst, err := getEnvAsInt("FBREF_BURST", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_BURST: %w", err)
	}
	if fbrefBurst < 1 {
		return Config{}, fmt.Errorf("FBREF_BURST must be >= 1")
	}
	fbrefTimeout, err := time.ParseDuration(getEnv("FBREF_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_TIMEOUT: %w", err)
	}
	if fbrefTimeout <= 0 {
		return Config{}, fmt.Errorf("FBREF_TIMEOUT must be > 0")
	}
	fbrefMaxRetries, err := getEnvAsInt("FBREF_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_MAX_RETRIES: %w", err)
	}
	if fbrefMaxRetries < 0 {
		return Config{}, fmt.Errorf("FBREF_MAX_RETRIES must be >= 0")
	}
	fbrefRetryBackoff, err := time.ParseDuration(getEnv("FBREF_RETRY_BACKOFF", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_RETRY_BACKOFF: %w", err)
	}
	fbrefCircuitEnabled, err := strconv.ParseBool(getEnv("FBREF_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_CIRCUIT_ENABLED: %w", err)
	}
	fbrefCircuitFailureCount, err := getEnvAsInt("FBREF_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if fbrefCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("FBREF_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	fbrefCircuitOpenTimeout, err := time.ParseDuration(getEnv("FBREF_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if fbrefCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("FBREF_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	fbrefCircuitHalfOpenMaxReq, err := getEnvAsInt("FBREF_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if fbrefCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("FBREF_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
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
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

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

	serviceName := getEnv("APP_SERVICE_NAME", "fantacalcio-stats")

	return Config{
		AppEnv:             appEnv,
		ServiceName:        serviceName,
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		Platform:           strings.TrimSpace(getEnv("APP_PLATFORM", "local")),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ResultCacheTTL:     resultCacheTTL,
		MetricsEnabled:     metricsEnabled,

		AliasFile:              strings.TrimSpace(getEnv("ALIAS_FILE", "")),
		StatsProvider:          statsProvider,
		StatsDataDir:           statsDataDir,
		StatsSourceLabel:       strings.TrimSpace(getEnv("STATS_SOURCE_LABEL", "FBref")),
		StatsPreloadCategories: preloadCategories,
		StatsPreloadWorkers:    preloadWorkers,
		DatasetFetchTimeout:    datasetFetchTimeout,
		DatasetRetryCooldown:   datasetRetryCooldown,

		FBrefBaseURL:               strings.TrimSpace(getEnv("FBREF_BASE_URL", "https://fbref.com")),
		FBrefCompID:                strings.TrimSpace(getEnv("FBREF_COMP_ID", "11")),
		FBrefCompSlug:              strings.TrimSpace(getEnv("FBREF_COMP_SLUG", "Serie-A")),
		FBrefLeague:                strings.TrimSpace(getEnv("FBREF_LEAGUE", "ITA-Serie A")),
		FBrefSeason:                strings.TrimSpace(getEnv("FBREF_SEASON", "")),
		FBrefRequestsPerSecond:     fbrefRPS,
		FBrefBurst:                 fbrefBurst,
		FBrefTimeout:               fbrefTimeout,
		FBrefMaxRetries:            fbrefMaxRetries,
		FBrefRetryBackoff:          fbrefRetryBackoff,
		FBrefUserAgent:             strings.TrimSpace(getEnv("FBREF_USER_AGENT", "")),
		FBrefCircuitEnabled:        fbrefCircuitEnabled,
		FBrefCircuitFailureCount:   fbrefCircuitFailureCount,
		FBrefCircuitOpenTimeout:    fbrefCircuitOpenTimeout,
		FBrefCircuitHalfOpenMaxReq: fbrefCircuitHalfOpenMaxReq,

		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}, nil
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

func parseStatsProvider(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case ProviderFBref, ProviderFile, ProviderNone:
		return value, nil
	default:
		return "", fmt.Errorf("invalid STATS_PROVIDER %q: valid values are %s, %s, %s", v, ProviderFBref, ProviderFile, ProviderNone)
	}
}
