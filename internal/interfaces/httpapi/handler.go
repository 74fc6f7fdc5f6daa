package httpapi

import (
	"context"
	"time"

	"github.com/riskibarqy/fantacalcio-stats/internal/domain/playerstats"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/logging"
	"github.com/riskibarqy/fantacalcio-stats/internal/usecase"
)

// PlayerStatsQuerier is the slice of the player stats service the transport needs.
type PlayerStatsQuerier interface {
	GetPlayerStats(ctx context.Context, rawName, teamHint string) (playerstats.Result, error)
	ClearCache(ctx context.Context) int
	CacheStats(ctx context.Context) usecase.CacheStats
	Available() bool
	Source() string
}

type HandlerConfig struct {
	ServiceName    string
	ServiceVersion string
	// Platform is the deployment label reported by /api/health.
	Platform string
	// Provider is the configured stats provider name, e.g. "fbref" or "file".
	Provider string
}

type Handler struct {
	playerStats PlayerStatsQuerier
	cfg         HandlerConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewHandler(playerStats PlayerStatsQuerier, cfg HandlerConfig, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "fantacalcio-stats"
	}
	if cfg.Platform == "" {
		cfg.Platform = "local"
	}
	if cfg.Provider == "" {
		cfg.Provider = "none"
	}

	return &Handler{
		playerStats: playerStats,
		cfg:         cfg,
		logger:      logger.Named("httpapi"),
		now:         time.Now,
	}
}
