package handlers

import (
	"net/http"

	"varirunBack/internal/services"
)

type SummaryHandler struct {
	Service *services.SummaryService
}

// Revenue handles GET /api/admin/summary?package_id=.
func (h *SummaryHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	packageID, err := optionalInt64(r, "package_id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	out, err := h.Service.Revenue(r.Context(), packageID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", out)
}

func (h *SummaryHandler) Totals(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.Totals(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", out)
}
