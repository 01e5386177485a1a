package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"varirunBack/internal/models"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", models.NotFound("payment"), http.StatusNotFound},
		{"conflict", models.Conflict("already processed"), http.StatusConflict},
		{"invalid input", models.InvalidInput("reason required", nil), http.StatusUnprocessableEntity},
		{"upload failed", models.UploadFailed(errors.New("s3 down")), http.StatusBadGateway},
		{"unauthorized", models.Unauthorized("unauthorized"), http.StatusUnauthorized},
		{"forbidden", models.Forbidden("admins only"), http.StatusForbidden},
		{"wrapped kind", fmt.Errorf("approve: %w", models.Conflict("x")), http.StatusConflict},
		{"duplicate entry", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, http.StatusConflict},
		{"foreign key", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1452}), http.StatusUnprocessableEntity},
		{"no record", models.ErrNoRecord, http.StatusNotFound},
		{"other", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _, _ := classify(tc.err)
			if status != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, status)
			}
		})
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/run-results", nil)
	WriteError(rec, req, models.InvalidInput("validation failed", map[string]string{"range": "range is required"}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	env := decodeEnvelope(t, rec)
	require.True(t, env.Error)
	require.Equal(t, http.StatusUnprocessableEntity, env.Code)
	require.Equal(t, "validation failed", env.Message)
	require.Equal(t, map[string]any{"range": "range is required"}, env.Data)
}

func TestInternalErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	WriteError(rec, req, errors.New("dial tcp 10.0.0.5:3306: refused"))

	env := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusInternalServerError, env.Code)
	require.Equal(t, "internal server error", env.Message)
	require.Nil(t, env.Data)
}

func TestWriteOK(t *testing.T) {
	rec := httptest.NewRecorder()
	writeOK(rec, "success", map[string]int{"id": 5})

	env := decodeEnvelope(t, rec)
	require.False(t, env.Error)
	require.Equal(t, http.StatusOK, env.Code)
	require.Equal(t, map[string]any{"id": float64(5)}, env.Data)
}
