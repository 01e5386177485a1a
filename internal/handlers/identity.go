package handlers

import (
	"context"
	"net/http"

	"varirunBack/internal/models"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// WithIdentity stores the authenticated caller in ctx.
func WithIdentity(ctx context.Context, userID int64, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// Identity returns the caller stored by WithIdentity.
func Identity(ctx context.Context) (int64, string, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok || userID == 0 {
		return 0, "", false
	}
	role, _ := ctx.Value(roleKey).(string)
	return userID, role, true
}

func caller(r *http.Request) (int64, string, error) {
	userID, role, ok := Identity(r.Context())
	if !ok {
		return 0, "", models.Unauthorized("unauthorized")
	}
	return userID, role, nil
}
