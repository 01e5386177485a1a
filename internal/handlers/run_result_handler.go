package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"varirunBack/internal/config"
	"varirunBack/internal/models"
	"varirunBack/internal/services"
)

type RunResultHandler struct {
	Service   *services.RunResultService
	MaxUpload int64
}

type updateRunStatusRequest struct {
	Status            string  `json:"status"`
	RejectDescription *string `json:"reject_description"`
}

func (h *RunResultHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, _, err := caller(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	limit := h.MaxUpload
	if limit <= 0 {
		limit = config.DefaultUploadLimit
	}
	if err := parseForm(w, r, limit); err != nil {
		WriteError(w, r, err)
		return
	}
	image, err := formImage(r, "image")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	rr, err := h.Service.Submit(r.Context(), models.SubmitRunResultInput{
		UserID: userID,
		Range:  r.FormValue("range"),
		Time:   r.FormValue("time"),
		Image:  image,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "run result submitted", rr)
}

func (h *RunResultHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _, err := caller(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.list(w, r, &userID)
}

func (h *RunResultHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	userID, err := optionalInt64(r, "user_id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.list(w, r, userID)
}

func (h *RunResultHandler) list(w http.ResponseWriter, r *http.Request, userID *int64) {
	page, err := pagination(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	out, err := h.Service.List(r.Context(), models.RunResultFilter{
		UserID: userID,
		Status: normalizeStatus(r.URL.Query().Get("status")),
		Page:   page,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", out)
}

func (h *RunResultHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, role, err := caller(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	rr, err := h.Service.Get(r.Context(), id, userID, models.IsAdminRole(role))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", rr)
}

// UpdateStatus handles PUT /api/run-results/:id with {status, reject_description}.
func (h *RunResultHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	approverID, _, err := caller(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req updateRunStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.RejectDescription != nil {
		trimmed := strings.TrimSpace(*req.RejectDescription)
		if trimmed == "" {
			req.RejectDescription = nil
		} else {
			req.RejectDescription = &trimmed
		}
	}

	rr, err := h.Service.UpdateStatus(r.Context(), models.UpdateRunStatusInput{
		ResultID:          id,
		Status:            normalizeStatus(req.Status),
		RejectDescription: req.RejectDescription,
		ApprovedBy:        approverID,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "run result updated", rr)
}
