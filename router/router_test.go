// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-rsvp/cliparse"
	"github.com/danielhkuo/quickly-rsvp/handlers"
	"github.com/danielhkuo/quickly-rsvp/models"
	"github.com/danielhkuo/quickly-rsvp/testutil"
)

func newTestRouter(t *testing.T) (*http.ServeMux, *testutil.FakeAPI) {
	t.Helper()
	fake := testutil.NewFakeAPI(t)
	lunch, poll := testutil.Lunch(nil)
	fake.AddInvitation(lunch, poll)
	fake.AddInvitation(testutil.Party())

	app := handlers.NewApp(cliparse.Config{
		APIURL:      fake.BaseURL(),
		Timeout:     5 * time.Second,
		SessionSalt: testutil.TestSalt,
	}, testutil.NewSession(t))
	return NewRouter(app), fake
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	expected := "quickly-rsvp API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/nowhere", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestRouteExistence(t *testing.T) {
	mux, _ := newTestRouter(t)

	// 400, 401, 404 and 422 are all valid handler answers here
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},

		{"POST", "/session"},
		{"GET", "/session"},
		{"DELETE", "/session"},

		{"GET", "/invitations"},
		{"GET", "/invitations/text"},
		{"POST", "/invitations/42/confirm"},
		{"DELETE", "/invitations/42/error"},
		{"GET", "/invitations/42/map"},
		{"GET", "/notifications/pending-count"},

		{"POST", "/polls/100/select"},
		{"POST", "/polls/100/change"},
		{"POST", "/polls/100/cancel"},
		{"POST", "/polls/100/vote"},
		{"POST", "/polls/100/unvote"},
		{"DELETE", "/polls/100/error"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	mux, _ := newTestRouter(t)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"POST to health endpoint", "POST", "/health", http.StatusMethodNotAllowed},
		{"GET a vote", "GET", "/polls/100/vote", http.StatusMethodNotAllowed},
		{"PUT a confirm", "PUT", "/invitations/42/confirm", http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d", tc.expectedStatus, tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestInvitationFlow(t *testing.T) {
	mux, fake := newTestRouter(t)

	serve := func(method, path string, body any) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest(method, path, body, nil))
		return w
	}

	testutil.AssertStatus(t, serve("GET", "/invitations", nil), http.StatusOK)

	w := serve("POST", "/invitations/42/confirm", models.ConfirmRequest{Status: models.StatusAccepted})
	testutil.AssertStatus(t, w, http.StatusOK)

	w = serve("GET", "/notifications/pending-count", nil)
	var count models.PendingCountResponse
	testutil.AssertJSON(t, w, &count)
	if count.Pending != 0 {
		t.Errorf("Expected 0 pending, got %d", count.Pending)
	}

	testutil.AssertStatus(t, serve("POST", "/polls/100/select", models.SelectOptionRequest{OptionID: 1001}), http.StatusOK)
	testutil.AssertStatus(t, serve("POST", "/polls/100/vote", nil), http.StatusOK)

	if fake.Votes(10, 100, 1001) != 6 {
		t.Errorf("Expected server count 6, got %d", fake.Votes(10, 100, 1001))
	}
}
