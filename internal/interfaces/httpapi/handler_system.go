package httpapi

import (
	"net/http"
	"time"
)

type healthDTO struct {
	Status            string         `json:"status"`
	Service           string         `json:"service"`
	Version           string         `json:"version,omitempty"`
	Platform          string         `json:"platform"`
	Provider          string         `json:"provider"`
	ProviderAvailable bool           `json:"provider_available"`
	CachedPlayers     int            `json:"cached_players"`
	CategoriesLoaded  map[string]int `json:"categories_loaded"`
	Timestamp         string         `json:"timestamp"`
}

type cacheClearDTO struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Cleared int    `json:"cleared"`
}

type serviceIndexDTO struct {
	Message   string   `json:"message"`
	Status    string   `json:"status"`
	Version   string   `json:"version,omitempty"`
	Endpoints []string `json:"endpoints"`
}

var serviceEndpoints = []string{
	"GET /api/player-stats/{player}?team={team}",
	"GET /v1/players/{player}/stats?team={team}",
	"GET /api/health",
	"POST /api/cache/clear",
	"GET /healthz",
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// Health reports provider availability and cache occupancy without touching
// the upstream.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Health")
	defer span.End()

	stats := h.playerStats.CacheStats(ctx)
	categories := stats.CategoriesLoaded
	if categories == nil {
		categories = map[string]int{}
	}

	writeJSON(ctx, w, http.StatusOK, healthDTO{
		Status:            "ok",
		Service:           h.cfg.ServiceName,
		Version:           h.cfg.ServiceVersion,
		Platform:          h.cfg.Platform,
		Provider:          h.cfg.Provider,
		ProviderAvailable: h.playerStats.Available(),
		CachedPlayers:     stats.Entries,
		CategoriesLoaded:  categories,
		Timestamp:         h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearCache")
	defer span.End()

	cleared := h.playerStats.ClearCache(ctx)
	writeJSON(ctx, w, http.StatusOK, cacheClearDTO{
		Message: "Cache pulita",
		Status:  "ok",
		Cleared: cleared,
	})
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Root")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, serviceIndexDTO{
		Message:   "Fantacalcio Stats API",
		Status:    "running",
		Version:   h.cfg.ServiceVersion,
		Endpoints: serviceEndpoints,
	})
}
