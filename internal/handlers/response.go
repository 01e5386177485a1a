package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"varirunBack/internal/models"
)

// envelope wraps every response body.
type envelope struct {
	Error   bool   `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Error:   status >= http.StatusBadRequest,
		Code:    status,
		Message: message,
		Data:    data,
	})
}

func writeOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, message, data)
}

// WriteError sends err in the envelope with the status of its kind.
// Unclassified errors are logged and reported as 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, message, data := classify(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("method", r.Method).Str("uri", r.URL.RequestURI()).Msg("request failed")
	}
	writeJSON(w, status, message, data)
}

func classify(err error) (int, string, any) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status := kindStatus(appErr.Kind)
		if len(appErr.Fields) > 0 {
			return status, appErr.Message, appErr.Fields
		}
		return status, appErr.Message, nil
	}

	switch {
	case isDuplicateEntryError(err):
		return http.StatusConflict, "duplicate entry", nil
	case isForeignKeyConstraintError(err):
		return http.StatusUnprocessableEntity, "referenced record does not exist", nil
	case errors.Is(err, models.ErrNoRecord):
		return http.StatusNotFound, "record not found", nil
	}
	return http.StatusInternalServerError, "internal server error", nil
}

func kindStatus(kind error) int {
	switch kind {
	case models.ErrNotFound:
		return http.StatusNotFound
	case models.ErrConflict:
		return http.StatusConflict
	case models.ErrInvalidInput:
		return http.StatusUnprocessableEntity
	case models.ErrUploadFailed:
		return http.StatusBadGateway
	case models.ErrUnauthorized:
		return http.StatusUnauthorized
	case models.ErrForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, message, nil)
}
