// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gojektech/heimdall/v6"
	"github.com/gojektech/heimdall/v6/httpclient"
	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-rsvp/apperr"
	"github.com/danielhkuo/quickly-rsvp/auth"
	"github.com/danielhkuo/quickly-rsvp/middleware"
	"github.com/danielhkuo/quickly-rsvp/models"
)

// Response bodies larger than this are treated as malformed
const maxResponseBytes = 1 << 20

type Config struct {
	BaseURL string
	// Timeout of zero means requests wait until the context is done
	Timeout time.Duration
	// FingerprintSalt keys the token fingerprints written to the log
	FingerprintSalt string
	// Doer replaces the underlying *http.Client, mostly for tests
	Doer heimdall.Doer
}

type attemptKey struct{}

// attempt keeps the transport error of one request. heimdall flattens it to
// a string that embeds the URL, so the original is picked up here.
type attempt struct {
	err error
}

// recordingDoer hands each transport error to the request's attempt
type recordingDoer struct {
	next heimdall.Doer
}

func (d recordingDoer) Do(req *http.Request) (*http.Response, error) {
	res, err := d.next.Do(req)
	if a, ok := req.Context().Value(attemptKey{}).(*attempt); ok && err != nil {
		a.err = err
	}
	return res, err
}

// Client is the authenticated boundary to the remote API. Every response is
// decoded into typed structs and validated before it reaches the caller.
type Client struct {
	baseURL  string
	http     *httpclient.Client
	session  auth.Provider
	validate *validator.Validate
	salt     string
}

func New(cfg Config, session auth.Provider) *Client {
	var doer heimdall.Doer = &http.Client{Timeout: cfg.Timeout}
	if cfg.Doer != nil {
		doer = cfg.Doer
	}

	hc := httpclient.NewClient(
		// Every retry is user-initiated
		httpclient.WithRetryCount(0),
		httpclient.WithHTTPClient(recordingDoer{next: doer}),
	)
	hc.AddPlugin(middleware.NewRequestLogger())

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     hc,
		session:  session,
		validate: validator.New(),
		salt:     cfg.FingerprintSalt,
	}
}

// call describes one remote request
type call struct {
	method string
	path   string
	// route is path with tokens and addresses replaced by placeholders;
	// it is the only form of the path that gets logged
	route           string
	body            any
	invitationToken string
	anonymous       bool
}

func (c call) op() string {
	return c.method + " " + c.route
}

// FetchInvitations handles GET /invitations/user/{email}
func (c *Client) FetchInvitations(ctx context.Context, email string) ([]models.Invitation, error) {
	if email == "" {
		return nil, apperr.Invalid("user identifier is required")
	}

	var out []models.Invitation
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/invitations/user/" + url.PathEscape(email),
		route:  "/invitations/user/{email}",
	}, &out)
	if err != nil {
		return nil, err
	}

	for i := range out {
		if err := c.check(http.StatusOK, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FetchPolls handles GET /events/{eventID}/polls
func (c *Client) FetchPolls(ctx context.Context, eventID int64, invitationToken string) ([]models.Poll, error) {
	if invitationToken == "" {
		return nil, apperr.Invalid("invitation token is required")
	}

	var out []models.Poll
	err := c.do(ctx, call{
		method:          http.MethodGet,
		path:            "/events/" + strconv.FormatInt(eventID, 10) + "/polls",
		route:           "/events/{eventID}/polls",
		invitationToken: invitationToken,
	}, &out)
	if err != nil {
		return nil, err
	}

	for i := range out {
		if err := c.check(http.StatusOK, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ConfirmInvitation handles POST /invitations/{token}/confirm
func (c *Client) ConfirmInvitation(ctx context.Context, invitationToken, status string) (models.Invitation, error) {
	if invitationToken == "" {
		return models.Invitation{}, apperr.Invalid("invitation token is required")
	}
	req := models.ConfirmRequest{Status: status}
	if err := c.validate.Struct(req); err != nil {
		return models.Invitation{}, apperr.Invalid("status must be accepted, declined or maybe")
	}

	var out models.Invitation
	err := c.do(ctx, call{
		method:          http.MethodPost,
		path:            "/invitations/" + url.PathEscape(invitationToken) + "/confirm",
		route:           "/invitations/{token}/confirm",
		body:            req,
		invitationToken: invitationToken,
	}, &out)
	if err != nil {
		return models.Invitation{}, err
	}

	// The fragment may be partial, but a status it does carry must be valid
	if err := c.validate.Var(out.Status, "omitempty,oneof=pending accepted declined maybe"); err != nil {
		return models.Invitation{}, malformed(http.StatusOK, err)
	}
	return out, nil
}

// PostVote handles POST /events/{eventID}/polls/{pollID}/vote/{optionID}
// and returns the option's new vote count
func (c *Client) PostVote(ctx context.Context, eventID, pollID, optionID int64, invitationToken string) (int, error) {
	return c.postBallot(ctx, "vote", eventID, pollID, optionID, invitationToken)
}

// PostUnvote handles POST /events/{eventID}/polls/{pollID}/unvote/{optionID}
// and returns the option's new vote count
func (c *Client) PostUnvote(ctx context.Context, eventID, pollID, optionID int64, invitationToken string) (int, error) {
	return c.postBallot(ctx, "unvote", eventID, pollID, optionID, invitationToken)
}

func (c *Client) postBallot(ctx context.Context, action string, eventID, pollID, optionID int64, invitationToken string) (int, error) {
	if optionID == models.NoOption {
		return 0, apperr.Invalid("no option selected")
	}
	if invitationToken == "" {
		return 0, apperr.Invalid("invitation token is required")
	}

	var out models.VoteResponse
	err := c.do(ctx, call{
		method:          http.MethodPost,
		path:            fmt.Sprintf("/events/%d/polls/%d/%s/%d", eventID, pollID, action, optionID),
		route:           "/events/{eventID}/polls/{pollID}/" + action + "/{optionID}",
		invitationToken: invitationToken,
	}, &out)
	if err != nil {
		return 0, err
	}
	if err := c.check(http.StatusOK, &out); err != nil {
		return 0, err
	}
	if out.Option.ID != 0 && out.Option.ID != optionID {
		return 0, &apperr.ServerError{
			Status:  http.StatusOK,
			Message: fmt.Sprintf("malformed response: counted option %d, expected %d", out.Option.ID, optionID),
		}
	}

	slog.Info("ballot posted",
		"action", action,
		"event_id", eventID,
		"poll_id", pollID,
		"option_id", optionID,
		"votes", *out.Option.Votes,
		"invitation", auth.Fingerprint(invitationToken, c.salt),
	)
	return *out.Option.Votes, nil
}

// Login handles POST /login_check. It is the only call made without a session.
func (c *Client) Login(ctx context.Context, email, password string) (models.LoginResponse, error) {
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.validate.Struct(req); err != nil {
		return models.LoginResponse{}, apperr.Invalid("a valid email and a password of at least 6 characters are required")
	}

	var out models.LoginResponse
	err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/login_check",
		route:     "/login_check",
		body:      req,
		anonymous: true,
	}, &out)
	if err != nil {
		return models.LoginResponse{}, err
	}
	if err := c.check(http.StatusOK, &out); err != nil {
		return models.LoginResponse{}, err
	}
	return out, nil
}

// do sends one request and decodes a 2xx body into out
func (c *Client) do(ctx context.Context, cl call, out any) error {
	var bearer string
	if !cl.anonymous {
		s, ok := c.session.Get()
		if !ok {
			return &apperr.AuthError{Err: apperr.ErrNoSession}
		}
		bearer = s.Token
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s body: %w", cl.op(), err)
		}
		body = bytes.NewReader(payload)
	}

	att := &attempt{}
	reqCtx := context.WithValue(middleware.WithRoute(ctx, cl.route), attemptKey{}, att)
	req, err := http.NewRequestWithContext(reqCtx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", cl.op(), middleware.RedactURL(err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.HeaderRequestID, uuid.NewString())
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set(auth.HeaderAuthorization, auth.BearerValue(bearer))
	}
	if cl.invitationToken != "" {
		req.Header.Set(auth.HeaderInvitationToken, cl.invitationToken)
	}

	res, err := c.http.Do(req)
	if err != nil {
		err = errors.New("request failed")
		if att.err != nil {
			err = middleware.RedactURL(att.err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &apperr.NetworkError{Op: cl.op(), Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes+1))
	if err != nil {
		return &apperr.NetworkError{Op: cl.op(), Err: err}
	}
	if len(data) > maxResponseBytes {
		return &apperr.ServerError{Status: res.StatusCode, Message: "response too large"}
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return &apperr.AuthError{Message: serverMessage(res.StatusCode, data)}
	case res.StatusCode < 200 || res.StatusCode > 299:
		return &apperr.ServerError{Status: res.StatusCode, Message: serverMessage(res.StatusCode, data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformed(res.StatusCode, err)
	}
	return nil
}

// check validates a decoded payload against its struct tags
func (c *Client) check(status int, v any) error {
	if err := c.validate.Struct(v); err != nil {
		return malformed(status, err)
	}
	return nil
}

func malformed(status int, err error) error {
	return &apperr.ServerError{Status: status, Message: "malformed response: " + err.Error()}
}

// serverMessage pulls a human-readable message out of an error payload
func serverMessage(status int, data []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := payload[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return http.StatusText(status)
}
