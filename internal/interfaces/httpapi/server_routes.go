package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fantacalcio-stats/internal/platform/metrics"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsEnabled bool) {
	mux.HandleFunc("GET /{$}", handler.Root)
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /api/health", handler.Health)
	mux.HandleFunc("POST /api/cache/clear", handler.ClearCache)
	if metricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}
}

func registerPlayerStatsRoutes(mux *http.ServeMux, handler *Handler) {
	// Legacy path kept for the existing frontend.
	mux.HandleFunc("GET /api/player-stats/{player}", handler.GetPlayerStats)
	mux.HandleFunc("GET /v1/players/{player}/stats", handler.GetPlayerStatsV1)
}
