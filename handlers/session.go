// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-rsvp/apperr"
	"github.com/danielhkuo/quickly-rsvp/auth"
	"github.com/danielhkuo/quickly-rsvp/middleware"
	"github.com/danielhkuo/quickly-rsvp/models"
)

type SessionHandler struct {
	app *App
}

func NewSessionHandler(app *App) *SessionHandler {
	return &SessionHandler{app: app}
}

// Login handles POST /session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}

	resp, err := h.app.Gateway.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login failed", "email", auth.Fingerprint(req.Email, h.app.LogSalt), "error", err)
		middleware.ErrorResponse(w, apperr.HTTPStatus(err), apperr.Message(err))
		return
	}

	// A different user must not see the previous one's invitations
	if prev := h.app.Store.User(); prev != "" && prev != resp.User.Email {
		h.app.Store.Reset()
		h.app.Invitations.Reset()
	}

	if err := h.app.Session.Set(auth.Session{Token: resp.Token, User: *resp.User}); err != nil {
		slog.Error("failed to store session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store session")
		return
	}

	slog.Info("signed in", "user_id", resp.User.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.SessionResponse{
		Authenticated: true,
		User:          resp.User,
	})
}

// Logout handles DELETE /session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Session.Clear(); err != nil {
		slog.Error("failed to clear session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to clear session")
		return
	}
	h.app.Store.Reset()
	h.app.Invitations.Reset()

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{Authenticated: false})
}

// Get handles GET /session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.app.Session.Get()
	if !ok {
		middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{Authenticated: false})
		return
	}
	user := s.User
	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
		Authenticated: true,
		User:          &user,
	})
}
