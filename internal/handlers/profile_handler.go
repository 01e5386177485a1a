package handlers

import (
	"net/http"

	"varirunBack/internal/services"
)

type ProfileHandler struct {
	Service *services.ProfileService
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _, err := caller(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	profile, err := h.Service.Me(r.Context(), userID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", profile)
}
