package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"varirunBack/internal/services"
)

type PackageHandler struct {
	Service *services.PackageService
	QR      *services.QRPaymentService
}

func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	userID, _, _ := Identity(r.Context())
	out, err := h.Service.List(r.Context(), userID, page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", out)
}

func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	pkg, err := h.Service.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", pkg)
}

func (h *PackageHandler) RequestQR(w http.ResponseWriter, r *http.Request) {
	userID, _, err := caller(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	out, err := h.QR.RequestQR(r.Context(), userID, id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", out)
}

// ConfirmQR accepts transaction_id in the JSON body or the query string.
func (h *PackageHandler) ConfirmQR(w http.ResponseWriter, r *http.Request) {
	userID, _, err := caller(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid request body")
		return
	}
	txID := strings.TrimSpace(req.TransactionID)
	if txID == "" {
		txID = strings.TrimSpace(r.URL.Query().Get("transaction_id"))
	}

	up, err := h.QR.ConfirmQR(r.Context(), userID, id, txID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "payment confirmed", up)
}
