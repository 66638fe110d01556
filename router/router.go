// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-rsvp/handlers"
	"github.com/danielhkuo/quickly-rsvp/middleware"
)

func NewRouter(app *handlers.App) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(app)
	invitationHandler := handlers.NewInvitationHandler(app)
	pollHandler := handlers.NewPollHandler(app)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session
	mux.HandleFunc("POST /session", middleware.WithLogging(sessionHandler.Login))
	mux.HandleFunc("GET /session", middleware.WithLogging(sessionHandler.Get))
	mux.HandleFunc("DELETE /session", middleware.WithLogging(sessionHandler.Logout))

	// Invitations
	mux.HandleFunc("GET /invitations", middleware.WithLogging(invitationHandler.List))
	mux.HandleFunc("GET /invitations/text", middleware.WithLogging(invitationHandler.Text))
	mux.HandleFunc("POST /invitations/{id}/confirm", middleware.WithLogging(invitationHandler.Confirm))
	mux.HandleFunc("DELETE /invitations/{id}/error", middleware.WithLogging(invitationHandler.DismissError))
	mux.HandleFunc("GET /invitations/{id}/map", middleware.WithLogging(invitationHandler.Map))
	mux.HandleFunc("GET /notifications/pending-count", middleware.WithLogging(invitationHandler.PendingCount))

	// Poll gestures
	mux.HandleFunc("POST /polls/{id}/select", middleware.WithLogging(pollHandler.Select))
	mux.HandleFunc("POST /polls/{id}/change", middleware.WithLogging(pollHandler.Change))
	mux.HandleFunc("POST /polls/{id}/cancel", middleware.WithLogging(pollHandler.Cancel))
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithLogging(pollHandler.Vote))
	mux.HandleFunc("POST /polls/{id}/unvote", middleware.WithLogging(pollHandler.Unvote))
	mux.HandleFunc("DELETE /polls/{id}/error", middleware.WithLogging(pollHandler.DismissError))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-rsvp API v1"))
	})

	return mux
}
