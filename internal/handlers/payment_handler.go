package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"varirunBack/internal/config"
	"varirunBack/internal/models"
	"varirunBack/internal/services"
)

type PaymentHandler struct {
	Service   *services.ManualPaymentService
	MaxUpload int64
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

func (h *PaymentHandler) uploadLimit() int64 {
	if h.MaxUpload > 0 {
		return h.MaxUpload
	}
	return config.DefaultUploadLimit
}

// Submit handles POST /api/payments (multipart: package_id, amount, address, size, payment_slip).
func (h *PaymentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, _, err := caller(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := parseForm(w, r, h.uploadLimit()); err != nil {
		WriteError(w, r, err)
		return
	}

	in := models.SubmitPaymentInput{UserID: userID, Address: strings.TrimSpace(r.FormValue("address"))}
	fields := map[string]string{}
	if in.Address == "" {
		fields["address"] = "address is required"
	}
	if raw := strings.TrimSpace(r.FormValue("package_id")); raw == "" {
		fields["package_id"] = "package_id is required"
	} else if v, err := strconv.ParseInt(raw, 10, 64); err != nil || v <= 0 {
		fields["package_id"] = "package_id must be a positive integer"
	} else {
		in.PackageID = v
	}
	if raw := strings.TrimSpace(r.FormValue("amount")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			fields["amount"] = "amount must be a non-negative integer"
		} else {
			in.Amount = &v
		}
	}
	if size := strings.TrimSpace(r.FormValue("size")); size != "" {
		in.Size = &size
	}
	if len(fields) > 0 {
		WriteError(w, r, models.InvalidInput("validation failed", fields))
		return
	}

	in.Slip, err = formImage(r, "payment_slip")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	payment, err := h.Service.Submit(r.Context(), in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "payment submitted", payment)
}

func (h *PaymentHandler) UploadSlip(w http.ResponseWriter, r *http.Request) {
	userID, _, err := caller(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := parseForm(w, r, h.uploadLimit()); err != nil {
		WriteError(w, r, err)
		return
	}
	slip, err := formImage(r, "payment_slip")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	payment, err := h.Service.UploadSlip(r.Context(), userID, slip)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "payment slip updated", payment)
}

func (h *PaymentHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, _, err := caller(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	payment, err := h.Service.GetCurrentPayment(r.Context(), userID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", payment)
}

// ListMine handles GET /api/payments for the caller's own records.
func (h *PaymentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _, err := caller(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	page, err := pagination(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	out, err := h.Service.GetForUser(r.Context(), userID, page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", out)
}

// ListAdmin handles GET /api/payments/admin?status=&search=&user_id=.
func (h *PaymentHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	userID, err := optionalInt64(r, "user_id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	out, err := h.Service.GetForAdmin(r.Context(), models.PaymentFilter{
		UserID: userID,
		Status: normalizeStatus(r.URL.Query().Get("status")),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Page:   page,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", out)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	payment, err := h.Service.GetPayment(r.Context(), id, userID, models.IsAdminRole(role))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "success", payment)
}

func (h *PaymentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	approverID, id, req, ok := h.review(w, r)
	if !ok {
		return
	}
	payment, err := h.Service.Approve(r.Context(), id, approverID, req.Notes)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "payment approved", payment)
}

func (h *PaymentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	approverID, id, req, ok := h.review(w, r)
	if !ok {
		return
	}
	payment, err := h.Service.Reject(r.Context(), id, approverID, req.Notes)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w, "payment rejected", payment)
}

// review reads the caller, the path id and an optional JSON body.
func (h *PaymentHandler) review(w http.ResponseWriter, r *http.Request) (int64, int64, reviewRequest, bool) {
	var req reviewRequest
	approverID, _, err := caller(r)
	if err != nil {
		WriteError(w, r, err)
		return 0, 0, req, false
	}
	id, err := idParam(r)
	if err != nil {
		WriteError(w, r, err)
		return 0, 0, req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid request body")
		return 0, 0, req, false
	}
	return approverID, id, req, true
}
