// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/danielhkuo/quickly-rsvp/auth"
	"github.com/danielhkuo/quickly-rsvp/models"
)

// Test credentials accepted by the fake remote API
const (
	TestSessionToken = "jwt-test-session"
	TestEmail        = "guest@example.com"
	TestPassword     = "hunter22"
	TestSalt         = "test-session-salt"
)

// Route keys for failure injection and call counting
const (
	RouteLogin       = "login"
	RouteInvitations = "invitations"
	RoutePolls       = "polls"
	RouteConfirm     = "confirm"
	RouteVote        = "vote"
	RouteUnvote      = "unvote"
)

type failure struct {
	status  int
	message string
	raw     string
}

// FakeAPI simulates the remote event API for one user. It keeps the server
// side truth (statuses, vote counts, the user's votes) so tests can check
// that the client converges on it.
type FakeAPI struct {
	Server *httptest.Server

	mu          sync.Mutex
	invitations []models.Invitation
	polls       map[int64][]models.Poll // event id -> polls
	failures    map[string][]failure
	calls       map[string]int
	holds       map[string]chan struct{}
	entered     map[string]chan struct{}
	lastHeaders map[string]http.Header
}

// NewFakeAPI starts a fake remote API; it is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		polls:       make(map[int64][]models.Poll),
		failures:    make(map[string][]failure),
		calls:       make(map[string]int),
		holds:       make(map[string]chan struct{}),
		entered:     make(map[string]chan struct{}),
		lastHeaders: make(map[string]http.Header),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login_check", f.login)
	mux.HandleFunc("GET /api/invitations/user/{email}", f.listInvitations)
	mux.HandleFunc("POST /api/invitations/{token}/confirm", f.confirm)
	mux.HandleFunc("GET /api/events/{eventID}/polls", f.listPolls)
	mux.HandleFunc("POST /api/events/{eventID}/polls/{pollID}/vote/{optionID}", f.ballot(RouteVote))
	mux.HandleFunc("POST /api/events/{eventID}/polls/{pollID}/unvote/{optionID}", f.ballot(RouteUnvote))

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the value to configure the gateway with
func (f *FakeAPI) BaseURL() string {
	return f.Server.URL + "/api"
}

// AddInvitation registers an invitation for TestEmail with the given event
// polls. Poll userVote values are taken as this user's existing votes.
func (f *FakeAPI) AddInvitation(inv models.Invitation, polls ...models.Poll) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv.Event.Polls = nil
	f.invitations = append(f.invitations, inv)
	f.polls[inv.Event.ID] = append(f.polls[inv.Event.ID], polls...)
}

// SetVotes overwrites an option's count, as if other users had voted
func (f *FakeAPI) SetVotes(eventID, pollID, optionID int64, votes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if opt := f.option(eventID, pollID, optionID); opt != nil {
		opt.Votes = votes
	}
}

// Votes returns the server's count for an option
func (f *FakeAPI) Votes(eventID, pollID, optionID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if opt := f.option(eventID, pollID, optionID); opt != nil {
		return opt.Votes
	}
	return -1
}

// Status returns the server's status for an invitation
func (f *FakeAPI) Status(invitationID int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invitations {
		if inv.ID == invitationID {
			return inv.Status
		}
	}
	return ""
}

// Fail makes the next call on route answer with status and a message payload
func (f *FakeAPI) Fail(route string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = append(f.failures[route], failure{status: status, message: message})
}

// FailRaw makes the next call on route answer 200 with a raw body
func (f *FakeAPI) FailRaw(route, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = append(f.failures[route], failure{status: http.StatusOK, raw: body})
}

// Hold blocks calls on route until the returned release func is called.
// entered receives once per call that reached the fake.
func (f *FakeAPI) Hold(route string) (entered <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	in := make(chan struct{}, 16)
	f.holds[route] = gate
	f.entered[route] = in

	var once sync.Once
	return in, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.holds, route)
			delete(f.entered, route)
			f.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns how many requests reached route
func (f *FakeAPI) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

// LastHeaders returns the headers of the most recent call on route
func (f *FakeAPI) LastHeaders(route string) http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastHeaders[route].Clone()
}

// enter records the call and applies holds and injected failures.
// It returns false when the response has already been written.
func (f *FakeAPI) enter(route string, w http.ResponseWriter, r *http.Request) bool {
	f.mu.Lock()
	f.calls[route]++
	f.lastHeaders[route] = r.Header.Clone()
	gate := f.holds[route]
	in := f.entered[route]
	f.mu.Unlock()

	if gate != nil {
		in <- struct{}{}
		<-gate
	}

	f.mu.Lock()
	var fail *failure
	if q := f.failures[route]; len(q) > 0 {
		fail = &q[0]
		f.failures[route] = q[1:]
	}
	f.mu.Unlock()

	if fail != nil {
		if fail.raw != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fail.status)
			w.Write([]byte(fail.raw))
			return false
		}
		writeJSON(w, fail.status, map[string]any{"code": fail.status, "message": fail.message})
		return false
	}

	if route == RouteLogin {
		return true
	}
	if r.Header.Get(auth.HeaderAuthorization) != auth.BearerValue(TestSessionToken) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "JWT Token not found"})
		return false
	}
	return true
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	if !f.enter(RouteLogin, w, r) {
		return
	}
	var req models.LoginRequest
	json.NewDecoder(r.Body).Decode(&req)
	if req.Email != TestEmail || req.Password != TestPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "Invalid credentials."})
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token: TestSessionToken,
		User:  &models.User{ID: 1, Email: TestEmail, Name: "Guest"},
	})
}

func (f *FakeAPI) listInvitations(w http.ResponseWriter, r *http.Request) {
	if !f.enter(RouteInvitations, w, r) {
		return
	}
	if r.PathValue("email") != TestEmail {
		writeJSON(w, http.StatusOK, []models.Invitation{})
		return
	}
	f.mu.Lock()
	out := make([]models.Invitation, len(f.invitations))
	for i, inv := range f.invitations {
		out[i] = inv.Clone()
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) confirm(w http.ResponseWriter, r *http.Request) {
	if !f.enter(RouteConfirm, w, r) {
		return
	}
	token := r.PathValue("token")
	var req models.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !models.IsConfirmStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid status"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.invitations {
		if f.invitations[i].Token == token {
			f.invitations[i].Status = req.Status
			writeJSON(w, http.StatusOK, map[string]any{
				"id":     f.invitations[i].ID,
				"status": req.Status,
			})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Invitation not found"})
}

func (f *FakeAPI) listPolls(w http.ResponseWriter, r *http.Request) {
	if !f.enter(RoutePolls, w, r) {
		return
	}
	eventID, _ := strconv.ParseInt(r.PathValue("eventID"), 10, 64)

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.authorized(eventID, r.Header.Get(auth.HeaderInvitationToken)) {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "Invalid invitation token"})
		return
	}
	inv := models.Invitation{Event: models.Event{Polls: f.polls[eventID]}}
	writeJSON(w, http.StatusOK, inv.Clone().Event.Polls)
}

func (f *FakeAPI) ballot(route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !f.enter(route, w, r) {
			return
		}
		eventID, _ := strconv.ParseInt(r.PathValue("eventID"), 10, 64)
		pollID, _ := strconv.ParseInt(r.PathValue("pollID"), 10, 64)
		optionID, _ := strconv.ParseInt(r.PathValue("optionID"), 10, 64)

		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.authorized(eventID, r.Header.Get(auth.HeaderInvitationToken)) {
			writeJSON(w, http.StatusForbidden, map[string]any{"message": "Invalid invitation token"})
			return
		}
		poll := f.poll(eventID, pollID)
		opt := f.option(eventID, pollID, optionID)
		if poll == nil || opt == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Option not found"})
			return
		}

		if route == RouteVote {
			if prior := poll.VotedOption(); prior != models.NoOption && prior != optionID {
				if p := f.option(eventID, pollID, prior); p != nil && p.Votes > 0 {
					p.Votes--
				}
			}
			if poll.VotedOption() != optionID {
				opt.Votes++
			}
			v := optionID
			poll.UserVote = &v
		} else {
			if poll.VotedOption() != optionID {
				writeJSON(w, http.StatusConflict, map[string]any{"message": "You have not voted for this option"})
				return
			}
			if opt.Votes > 0 {
				opt.Votes--
			}
			poll.UserVote = nil
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"option": map[string]any{"id": opt.ID, "votes": opt.Votes},
		})
	}
}

// authorized checks the invitation token grants access to the event's polls
func (f *FakeAPI) authorized(eventID int64, token string) bool {
	for _, inv := range f.invitations {
		if inv.Event.ID == eventID && inv.Token == token && inv.Status == models.StatusAccepted {
			return true
		}
	}
	return false
}

func (f *FakeAPI) poll(eventID, pollID int64) *models.Poll {
	polls := f.polls[eventID]
	for i := range polls {
		if polls[i].ID == pollID {
			return &polls[i]
		}
	}
	return nil
}

func (f *FakeAPI) option(eventID, pollID, optionID int64) *models.PollOption {
	p := f.poll(eventID, pollID)
	if p == nil {
		return nil
	}
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			return &p.Options[i]
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// LogBuffer collects log output written from any goroutine
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// CaptureLogs sends the default slog logger to a buffer, debug level
// included, until the test ends
func CaptureLogs(t *testing.T) *LogBuffer {
	t.Helper()
	buf := &LogBuffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

// AssertNotLogged fails the test if any secret appears in the captured logs
func AssertNotLogged(t *testing.T, logs *LogBuffer, secrets ...string) {
	t.Helper()
	out := logs.String()
	for _, s := range secrets {
		if strings.Contains(out, s) {
			t.Errorf("Expected %q to stay out of the logs, got:\n%s", s, out)
		}
	}
}

// Fixtures

// NewSession returns a provider already holding the test session
func NewSession(t *testing.T) *auth.MemoryProvider {
	t.Helper()
	p := auth.NewMemoryProvider()
	if err := p.Set(auth.Session{
		Token: TestSessionToken,
		User:  models.User{ID: 1, Email: TestEmail, Name: "Guest"},
	}); err != nil {
		t.Fatalf("Failed to set session: %v", err)
	}
	return p
}

// VotedFor returns a userVote pointer
func VotedFor(optionID int64) *int64 {
	return &optionID
}

// Lunch is an accepted invitation to event 10 with one poll (id 100) whose
// options are 1001 (5 votes) and 1002 (3 votes)
func Lunch(userVote *int64) (models.Invitation, models.Poll) {
	lat, lng := 48.8566, 2.3522
	inv := models.Invitation{
		ID:     1,
		Token:  "tok-lunch",
		Status: models.StatusAccepted,
		Event: models.Event{
			ID:            10,
			Title:         "Team lunch",
			EventDate:     &models.DateTime{Date: "2025-06-01 00:00:00.000000", Timezone: "UTC"},
			EventTime:     &models.DateTime{Date: "1970-01-01 12:30:00.000000", Timezone: "UTC"},
			EventLocation: "Canteen",
			Latitude:      &lat,
			Longitude:     &lng,
		},
	}
	poll := models.Poll{
		ID:       100,
		Question: "Where do we eat?",
		Options: []models.PollOption{
			{ID: 1001, Text: "Pizza", Votes: 5},
			{ID: 1002, Text: "Sushi", Votes: 3},
		},
		UserVote: userVote,
	}
	return inv, poll
}

// Party is a pending invitation to event 20 with id 42 and token "tok123"
func Party() models.Invitation {
	return models.Invitation{
		ID:     42,
		Token:  "tok123",
		Status: models.StatusPending,
		Event:  models.Event{ID: 20, Title: "Birthday party"},
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertContains checks that the response body contains every fragment
func AssertContains(t *testing.T, body string, fragments ...string) {
	t.Helper()
	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("Expected body to contain %q. Body: %s", frag, body)
		}
	}
}
