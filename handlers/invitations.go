// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-rsvp/apperr"
	"github.com/danielhkuo/quickly-rsvp/middleware"
	"github.com/danielhkuo/quickly-rsvp/models"
	"github.com/danielhkuo/quickly-rsvp/view"
)

// Sent with 401 when the page should send the user to the login screen
const loginRequired = "login_required"

type InvitationHandler struct {
	app *App
}

func NewInvitationHandler(app *App) *InvitationHandler {
	return &InvitationHandler{app: app}
}

// CardResponse is the answer to an invitation gesture
type CardResponse struct {
	Card    view.Card `json:"card"`
	Message string    `json:"message,omitempty"`
}

// ensureLoaded loads the signed-in user's invitations unless they are
// already held
func (h *InvitationHandler) ensureLoaded(ctx context.Context, force bool) error {
	s, ok := h.app.Session.Get()
	if !ok {
		return &apperr.AuthError{Err: apperr.ErrNoSession}
	}
	st := h.app.Store
	if !force && st.Loaded() && st.User() == s.User.Email {
		return nil
	}
	return st.Load(ctx, s.User.Email)
}

// load answers the request itself when loading failed
func (h *InvitationHandler) load(w http.ResponseWriter, r *http.Request) bool {
	err := h.ensureLoaded(r.Context(), r.URL.Query().Get("reload") == "1")
	if err == nil {
		return true
	}
	if apperr.IsAuth(err) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, loginRequired)
		return false
	}
	slog.Error("failed to load invitations", "error", err)
	middleware.ErrorResponse(w, apperr.HTTPStatus(err), apperr.Message(err))
	return false
}

// List handles GET /invitations
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.load(w, r) {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.app.Cards())
}

// Text handles GET /invitations/text
func (h *InvitationHandler) Text(w http.ResponseWriter, r *http.Request) {
	if !h.load(w, r) {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := (view.TextRenderer{}).Render(w, h.app.Cards()); err != nil {
		slog.Error("failed to render invitations", "error", err)
	}
}

// Confirm handles POST /invitations/{id}/confirm
func (h *InvitationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.invitation(w, r)
	if !ok {
		return
	}

	var req models.ConfirmRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}

	err := h.app.Invitations.Confirm(r.Context(), inv.Token, inv.ID, req.Status)
	h.respond(w, inv.ID, err)
}

// DismissError handles DELETE /invitations/{id}/error
func (h *InvitationHandler) DismissError(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.invitation(w, r)
	if !ok {
		return
	}
	h.app.Invitations.DismissError(inv.ID)
	h.respond(w, inv.ID, nil)
}

// Map handles GET /invitations/{id}/map
func (h *InvitationHandler) Map(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.invitation(w, r)
	if !ok {
		return
	}
	ev := inv.Event
	if ev.Latitude == nil || ev.Longitude == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event has no map location")
		return
	}

	label := ev.EventLocation
	if label == "" {
		label = view.ToBeDetermined
	}
	middleware.JSONResponse(w, http.StatusOK, models.MapLocation{
		Latitude:  *ev.Latitude,
		Longitude: *ev.Longitude,
		Label:     label,
	})
}

// PendingCount handles GET /notifications/pending-count
func (h *InvitationHandler) PendingCount(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.PendingCountResponse{
		Pending: h.app.Store.PendingCount(),
	})
}

func (h *InvitationHandler) invitation(w http.ResponseWriter, r *http.Request) (models.Invitation, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid invitation id")
		return models.Invitation{}, false
	}
	inv, ok := h.app.Store.Invitation(id)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Invitation not found")
		return models.Invitation{}, false
	}
	return inv, true
}

// respond sends the invitation's card with the gesture's outcome
func (h *InvitationHandler) respond(w http.ResponseWriter, invitationID int64, err error) {
	inv, ok := h.app.Store.Invitation(invitationID)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Invitation not found")
		return
	}
	resp := CardResponse{
		Card: view.BuildCard(inv, h.app.Polls, h.app.Invitations, h.app.Now()),
	}
	if err != nil {
		resp.Message = apperr.Message(err)
	}
	middleware.JSONResponse(w, apperr.HTTPStatus(err), resp)
}
