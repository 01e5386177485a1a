package handlers

import (
	"encoding/json"
	"net/http"

	"varirunBack/internal/models"
	"varirunBack/internal/services"
)

type AuthHandler struct {
	Service *services.AuthService
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	resp, err := h.Service.SignIn(r.Context(), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "signed in", resp)
}
