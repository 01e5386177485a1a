package main

import (
	"context"
	"net/http"
	"time"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(roleUser))
	adminAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(roleAdmin))

	mux := pat.New()

	// Auth
	mux.Post("/api/auth/sign_in", standardMiddleware.ThenFunc(app.authHandler.SignIn))
	mux.Get("/api/users/me", authMiddleware.ThenFunc(app.profileHandler.Me))

	// Packages and QR payment
	mux.Get("/api/packages", authMiddleware.ThenFunc(app.packageHandler.List))
	mux.Get("/api/packages/:id/qr", authMiddleware.ThenFunc(app.packageHandler.RequestQR))
	mux.Post("/api/packages/:id/qr/confirm", authMiddleware.ThenFunc(app.packageHandler.ConfirmQR))
	mux.Get("/api/packages/:id", authMiddleware.ThenFunc(app.packageHandler.Get))

	// Manual payments. Fixed paths are registered before /:id.
	mux.Post("/api/payments", authMiddleware.ThenFunc(app.paymentHandler.Submit))
	mux.Get("/api/payments", authMiddleware.ThenFunc(app.paymentHandler.ListMine))
	mux.Get("/api/payments/current", authMiddleware.ThenFunc(app.paymentHandler.Current))
	mux.Put("/api/payments/upload-slip", authMiddleware.ThenFunc(app.paymentHandler.UploadSlip))
	mux.Get("/api/payments/admin", adminAuthMiddleware.ThenFunc(app.paymentHandler.ListAdmin))
	mux.Get("/api/payments/:id", authMiddleware.ThenFunc(app.paymentHandler.Get))
	mux.Put("/api/payments/:id/approve", adminAuthMiddleware.ThenFunc(app.paymentHandler.Approve))
	mux.Put("/api/payments/:id/reject", adminAuthMiddleware.ThenFunc(app.paymentHandler.Reject))

	// Run results
	mux.Post("/api/run-results", authMiddleware.ThenFunc(app.runResultHandler.Submit))
	mux.Get("/api/run-results", authMiddleware.ThenFunc(app.runResultHandler.ListMine))
	mux.Get("/api/run-results/:id", authMiddleware.ThenFunc(app.runResultHandler.Get))
	mux.Put("/api/run-results/:id", adminAuthMiddleware.ThenFunc(app.runResultHandler.UpdateStatus))
	mux.Get("/api/admin-results", adminAuthMiddleware.ThenFunc(app.runResultHandler.ListAdmin))

	// Rankings
	mux.Get("/api/rankings/top", standardMiddleware.ThenFunc(app.rankingHandler.Top))
	mux.Get("/api/rankings", standardMiddleware.ThenFunc(app.rankingHandler.Leaderboard))

	// Summary
	mux.Get("/api/admin/summary/range", adminAuthMiddleware.ThenFunc(app.summaryHandler.Totals))
	mux.Get("/api/admin/summary", adminAuthMiddleware.ThenFunc(app.summaryHandler.Revenue))

	// Notifications
	mux.Get("/ws", alice.New(app.recoverPanic, app.logRequest).Append(app.JWTMiddlewareWithRole(roleUser)).ThenFunc(app.WebSocketHandler))

	if app.uploadDir != "" {
		mux.Get("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.uploadDir))))
	}
	mux.Get("/health", http.HandlerFunc(app.health))

	return mux
}

func (app *application) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if app.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := app.db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":true,"code":503,"message":"database unavailable","data":null}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"error":false,"code":200,"message":"ok","data":null}`))
}
