package app

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/fantacalcio-stats/internal/config"
	"github.com/riskibarqy/fantacalcio-stats/internal/domain/playeridentity"
	"github.com/riskibarqy/fantacalcio-stats/internal/domain/playerstats"
	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
	"github.com/riskibarqy/fantacalcio-stats/internal/infrastructure/dataset"
	"github.com/riskibarqy/fantacalcio-stats/internal/infrastructure/provider/fbref"
	"github.com/riskibarqy/fantacalcio-stats/internal/infrastructure/provider/file"
	"github.com/riskibarqy/fantacalcio-stats/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/cache"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/logging"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/resilience"
	"github.com/riskibarqy/fantacalcio-stats/internal/usecase"
)

// Container holds the wired components shared by the HTTP server and the CLI.
type Container struct {
	Config       config.Config
	Logger       *logging.Logger
	Matcher      *playeridentity.Matcher
	Datasets     *dataset.Cache
	PlayerStats  *usecase.PlayerStatsService
	ProviderName string
}

func Build(cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	aliases, err := playeridentity.LoadAliasFile(cfg.AliasFile)
	if err != nil {
		return nil, fmt.Errorf("load alias file: %w", err)
	}
	logger.Info("player aliases loaded", "version", aliases.Version, "entries", aliases.Len(), "file", cfg.AliasFile)
	matcher := playeridentity.NewMatcher(playeridentity.NewNormalizer(aliases))

	provider, err := NewProvider(cfg, logger)
	if err != nil {
		return nil, err
	}
	providerName := config.ProviderNone
	if provider != nil {
		providerName = provider.Name()
	} else {
		logger.Warn("no stats provider configured, queries will report the service as unavailable")
	}

	datasets := dataset.NewCache(provider, dataset.Config{
		FetchTimeout:   cfg.DatasetFetchTimeout,
		RetryCooldown:  cfg.DatasetRetryCooldown,
		PreloadWorkers: cfg.StatsPreloadWorkers,
	}, logger)

	results := cache.NewStore[playerstats.Result](cfg.ResultCacheTTL)
	playerStats := usecase.NewPlayerStatsService(datasets, matcher, results, cfg.StatsSourceLabel, logger)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Matcher:      matcher,
		Datasets:     datasets,
		PlayerStats:  playerStats,
		ProviderName: providerName,
	}, nil
}

// NewProvider builds the configured stats provider. STATS_PROVIDER=none
// yields a nil provider.
func NewProvider(cfg config.Config, logger *logging.Logger) (stattable.Provider, error) {
	switch cfg.StatsProvider {
	case config.ProviderFBref:
		return fbref.NewClient(fbref.ClientConfig{
			BaseURL:           cfg.FBrefBaseURL,
			CompID:            cfg.FBrefCompID,
			CompSlug:          cfg.FBrefCompSlug,
			League:            cfg.FBrefLeague,
			Season:            cfg.FBrefSeason,
			RequestsPerSecond: cfg.FBrefRequestsPerSecond,
			Burst:             cfg.FBrefBurst,
			Timeout:           cfg.FBrefTimeout,
			MaxRetries:        cfg.FBrefMaxRetries,
			RetryBackoff:      cfg.FBrefRetryBackoff,
			UserAgent:         cfg.FBrefUserAgent,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FBrefCircuitEnabled,
				FailureThreshold: cfg.FBrefCircuitFailureCount,
				OpenTimeout:      cfg.FBrefCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FBrefCircuitHalfOpenMaxReq,
			},
			Logger: logger,
		}), nil
	case config.ProviderFile:
		provider, err := file.NewProvider(cfg.StatsDataDir, logger)
		if err != nil {
			return nil, fmt.Errorf("build file provider: %w", err)
		}
		return provider, nil
	case config.ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported stats provider %q", cfg.StatsProvider)
	}
}

func NewHTTPServer(c *Container) (*http.Server, error) {
	cfg := c.Config

	handler := httpapi.NewHandler(c.PlayerStats, httpapi.HandlerConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Platform:       cfg.Platform,
		Provider:       c.ProviderName,
	}, c.Logger)
	router := httpapi.NewRouter(handler, c.Logger, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MetricsEnabled:     cfg.MetricsEnabled,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
