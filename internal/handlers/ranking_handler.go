package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"varirunBack/internal/models"
	"varirunBack/internal/services"
)

type RankingHandler struct {
	Service *services.RankingService
}

func (h *RankingHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	out, err := h.Service.Leaderboard(r.Context(), models.LeaderboardFilter{
		Range: strings.TrimSpace(r.URL.Query().Get("range")),
		Page:  page,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", out)
}

func (h *RankingHandler) Top(w http.ResponseWriter, r *http.Request) {
	n := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			WriteError(w, r, models.InvalidInput("invalid limit", map[string]string{"limit": "must be a positive integer"}))
			return
		}
		n = v
	}
	top, err := h.Service.Top(r.Context(), n)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", top)
}
