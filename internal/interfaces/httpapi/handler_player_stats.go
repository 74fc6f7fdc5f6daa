package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/fantacalcio-stats/internal/domain/playerstats"
)

const dataSourceHeader = "X-Data-Source"

type playerStatsErrorDTO struct {
	Error            string   `json:"error"`
	Kind             string   `json:"kind"`
	AvailablePlayers []string `json:"available_players,omitempty"`
}

// GetPlayerStats serves the legacy frontend contract: the result document is
// written as is and failures use a flat error object.
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerStats")
	defer span.End()

	player := r.PathValue("player")
	team := strings.TrimSpace(r.URL.Query().Get("team"))

	result, err := h.playerStats.GetPlayerStats(ctx, player, team)
	if err != nil {
		h.logQueryError(r, player, team, err)

		mapped := mapError(ctx, err)
		body := playerStatsErrorDTO{
			Error: "Errore interno del servizio",
			Kind:  string(playerstats.KindInternal),
		}
		if qe, ok := playerstats.AsQueryError(err); ok {
			body.Error = qe.Message
			body.Kind = string(qe.Kind)
			body.AvailablePlayers = qe.AvailablePlayers
		}
		writeJSON(ctx, w, mapped.HTTPStatus, body)
		return
	}

	w.Header().Set(dataSourceHeader, h.playerStats.Source())
	writeJSON(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetPlayerStatsV1(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerStatsV1")
	defer span.End()

	player := r.PathValue("player")
	team := strings.TrimSpace(r.URL.Query().Get("team"))

	result, err := h.playerStats.GetPlayerStats(ctx, player, team)
	if err != nil {
		h.logQueryError(r, player, team, err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set(dataSourceHeader, h.playerStats.Source())
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) logQueryError(r *http.Request, player, team string, err error) {
	qe, ok := playerstats.AsQueryError(err)
	if ok && qe.Kind == playerstats.KindPlayerNotFound {
		h.logger.InfoContext(r.Context(), "player not found", "player", player, "team", team)
		return
	}
	h.logger.WarnContext(r.Context(), "player stats query failed", "player", player, "team", team, "error", err)
}
