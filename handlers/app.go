// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/quickly-rsvp/apperr"
	"github.com/danielhkuo/quickly-rsvp/auth"
	"github.com/danielhkuo/quickly-rsvp/cliparse"
	"github.com/danielhkuo/quickly-rsvp/gateway"
	"github.com/danielhkuo/quickly-rsvp/invitations"
	"github.com/danielhkuo/quickly-rsvp/middleware"
	"github.com/danielhkuo/quickly-rsvp/polls"
	"github.com/danielhkuo/quickly-rsvp/store"
	"github.com/danielhkuo/quickly-rsvp/view"
)

var validate = validator.New()

// App bundles the workflow the handlers drive
type App struct {
	Session     auth.Provider
	Gateway     *gateway.Client
	Store       *store.Store
	Polls       *polls.Coordinator
	Invitations *invitations.Controller
	Now         func() time.Time
	// LogSalt keys the fingerprints logged in place of tokens and addresses
	LogSalt string
}

// NewApp wires the gateway, store, coordinator and controller together.
// The coordinator is reseeded after every store load.
func NewApp(cfg cliparse.Config, session auth.Provider) *App {
	gw := gateway.New(gateway.Config{
		BaseURL:         cfg.APIURL,
		Timeout:         cfg.Timeout,
		FingerprintSalt: cfg.SessionSalt,
	}, session)

	st := store.New(gw, session)
	coord := polls.New(gw, st)
	st.OnLoad(coord.Seed)

	return &App{
		Session:     session,
		Gateway:     gw,
		Store:       st,
		Polls:       coord,
		Invitations: invitations.New(gw, st),
		Now:         time.Now,
		LogSalt:     cfg.SessionSalt,
	}
}

// Cards builds the invitation cards as they stand
func (a *App) Cards() []view.Card {
	return view.BuildCards(a.Store.Invitations(), a.Polls, a.Invitations, a.Now())
}

// PrintInvitations loads the signed-in user's invitations and writes them
// to f, coloured when f is a terminal
func (a *App) PrintInvitations(ctx context.Context, f *os.File) error {
	s, ok := a.Session.Get()
	if !ok {
		return &apperr.AuthError{Err: apperr.ErrNoSession}
	}
	if err := a.Store.Load(ctx, s.User.Email); err != nil {
		return err
	}
	return view.TextRenderer{Color: view.ColorEnabled(f)}.Render(f, a.Cards())
}

// pathID reads a numeric path value
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeRequest parses and validates a JSON body. An empty body is accepted
// when optional is set.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	if err := middleware.ParseJSONBody(r, v); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return false
		}
	}
	if err := validate.Struct(v); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fe.Field() + " failed on " + fe.Tag()
	}
	return err.Error()
}
