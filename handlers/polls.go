// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-rsvp/apperr"
	"github.com/danielhkuo/quickly-rsvp/middleware"
	"github.com/danielhkuo/quickly-rsvp/models"
	"github.com/danielhkuo/quickly-rsvp/polls"
	"github.com/danielhkuo/quickly-rsvp/store"
	"github.com/danielhkuo/quickly-rsvp/view"
)

type PollHandler struct {
	app *App
}

func NewPollHandler(app *App) *PollHandler {
	return &PollHandler{app: app}
}

// PollResponse is the answer to a poll gesture. Message explains a rejected
// or failed gesture; failures of the remote are also kept on Poll.Error.
type PollResponse struct {
	Poll    view.PollWidget `json:"poll"`
	Message string          `json:"message,omitempty"`
}

// Select handles POST /polls/{id}/select
func (h *PollHandler) Select(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.poll(w, r)
	if !ok {
		return
	}
	var req models.SelectOptionRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}
	h.respond(w, ref.Poll.ID, h.app.Polls.SelectOption(ref.Poll.ID, req.OptionID))
}

// Change handles POST /polls/{id}/change
func (h *PollHandler) Change(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.poll(w, r)
	if !ok {
		return
	}
	h.respond(w, ref.Poll.ID, h.app.Polls.StartChangeVote(ref.Poll.ID))
}

// Cancel handles POST /polls/{id}/cancel
func (h *PollHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.poll(w, r)
	if !ok {
		return
	}
	h.respond(w, ref.Poll.ID, h.app.Polls.CancelEdit(ref.Poll.ID))
}

// Vote handles POST /polls/{id}/vote. Without an option_id the poll's
// current selection is voted.
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.poll(w, r)
	if !ok {
		return
	}
	var req models.VoteRequest
	if !decodeRequest(w, r, &req, true) {
		return
	}

	option := req.OptionID
	if option == models.NoOption {
		st, _ := h.app.Polls.State(ref.Poll.ID)
		option = st.Selected
	}

	err := h.app.Polls.Vote(r.Context(), ref.Poll.ID, option, ref.InvitationToken)
	h.respond(w, ref.Poll.ID, err)
}

// Unvote handles POST /polls/{id}/unvote
func (h *PollHandler) Unvote(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.poll(w, r)
	if !ok {
		return
	}
	err := h.app.Polls.Unvote(r.Context(), ref.Poll.ID, ref.InvitationToken)
	h.respond(w, ref.Poll.ID, err)
}

// DismissError handles DELETE /polls/{id}/error
func (h *PollHandler) DismissError(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.poll(w, r)
	if !ok {
		return
	}
	h.respond(w, ref.Poll.ID, h.app.Polls.DismissError(ref.Poll.ID))
}

func (h *PollHandler) poll(w http.ResponseWriter, r *http.Request) (store.PollRef, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid poll id")
		return store.PollRef{}, false
	}
	ref, ok := h.app.Store.FindPoll(id)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return store.PollRef{}, false
	}
	return ref, true
}

// respond sends the poll widget as it stands after the gesture
func (h *PollHandler) respond(w http.ResponseWriter, pollID int64, err error) {
	ref, ok := h.app.Store.FindPoll(pollID)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	st, ok := h.app.Polls.State(pollID)
	if !ok {
		st = polls.Seeded(ref.Poll.VotedOption())
	}

	resp := PollResponse{Poll: view.BuildPoll(ref.Poll, st)}
	if err != nil {
		resp.Message = apperr.Message(err)
	}
	middleware.JSONResponse(w, apperr.HTTPStatus(err), resp)
}
