// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/danielhkuo/quickly-rsvp/models"
)

func TestWithLogging(t *testing.T) {
	handlerCalled := false
	testHandler := func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("success"))
	}

	req := httptest.NewRequest("GET", "/invitations", nil)
	w := httptest.NewRecorder()

	WithLogging(testHandler)(w, req)

	if !handlerCalled {
		t.Error("Expected handler to be called")
	}
	if w.Code != http.StatusAccepted {
		t.Errorf("Expected status 202, got %d", w.Code)
	}
	if w.Body.String() != "success" {
		t.Errorf("Expected body 'success', got '%s'", w.Body.String())
	}
	if w.Header().Get(HeaderRequestID) == "" {
		t.Error("Expected a request ID to be assigned")
	}

	req = httptest.NewRequest("GET", "/invitations", nil)
	req.Header.Set(HeaderRequestID, "browser-7")
	w = httptest.NewRecorder()
	WithLogging(testHandler)(w, req)
	if got := w.Header().Get(HeaderRequestID); got != "browser-7" {
		t.Errorf("Expected request ID to be echoed, got %q", got)
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, http.StatusConflict, "a request for this poll is already in flight")

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error != "Conflict" {
		t.Errorf("Expected error 'Conflict', got '%s'", resp.Error)
	}
	if resp.Message != "a request for this poll is already in flight" {
		t.Errorf("Unexpected message '%s'", resp.Message)
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/polls/3/vote", strings.NewReader(`{"option_id": 12}`))
		var body models.VoteRequest
		if err := ParseJSONBody(req, &body); err != nil {
			t.Fatalf("ParseJSONBody() error = %v", err)
		}
		if body.OptionID != 12 {
			t.Errorf("Expected option_id 12, got %d", body.OptionID)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/polls/3/vote", strings.NewReader(`{"optionid": 12}`))
		var body models.VoteRequest
		if err := ParseJSONBody(req, &body); err == nil {
			t.Error("Expected error for unknown field")
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/polls/3/vote", strings.NewReader(`{"option_id":`))
		var body models.VoteRequest
		if err := ParseJSONBody(req, &body); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestCORS(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("handled"))
	})
	corsHandler := CORS(nextHandler)

	t.Run("preflight OPTIONS request", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/polls/1/vote", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if w.Body.String() != "" {
			t.Errorf("Expected empty body for preflight, got '%s'", w.Body.String())
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
			t.Error("Expected Access-Control-Allow-Origin to match request origin")
		}

		allowedHeaders := w.Header().Get("Access-Control-Allow-Headers")
		for _, h := range []string{"Content-Type", "Authorization", "Invitation-Token"} {
			if !strings.Contains(allowedHeaders, h) {
				t.Errorf("Expected %s in allowed headers", h)
			}
		}
	})

	t.Run("request without origin defaults to wildcard", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/invitations", nil)
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Expected Access-Control-Allow-Origin to default to '*'")
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.1:1234", "198.51.100.2"},
		{"remote addr with port", nil, "192.0.2.9:5555", "192.0.2.9"},
		{"remote addr without port", nil, "192.0.2.9", "192.0.2.9"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tc.expectedIP {
				t.Errorf("Expected IP %s, got %s", tc.expectedIP, got)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	l := NewRequestLogger()
	req := httptest.NewRequest("POST", "http://remote/api/events/1/polls/2/vote/3", nil)
	req.Header.Set(HeaderRequestID, "req-1")

	l.OnRequestStart(req)
	if _, ok := l.started.Load(req); !ok {
		t.Fatal("Expected start time to be recorded")
	}

	l.OnRequestEnd(req, &http.Response{StatusCode: http.StatusOK})
	if _, ok := l.started.Load(req); ok {
		t.Error("Expected start time to be released after completion")
	}

	l.OnRequestStart(req)
	l.OnError(req, errors.New("connection refused"))
	if _, ok := l.started.Load(req); ok {
		t.Error("Expected start time to be released after error")
	}

	// An end without a start must not panic
	l.OnRequestEnd(req, &http.Response{StatusCode: http.StatusOK})
}

func TestRouteAndRedactURL(t *testing.T) {
	req := httptest.NewRequest("POST", "http://remote/api/invitations/tok123/confirm", nil)
	if got := Route(req); got != "unknown" {
		t.Errorf("Expected unknown route without a template, got %q", got)
	}
	req = req.WithContext(WithRoute(req.Context(), "/invitations/{token}/confirm"))
	if got := Route(req); got != "/invitations/{token}/confirm" {
		t.Errorf("Expected route template, got %q", got)
	}

	cause := errors.New("connection refused")
	err := RedactURL(&url.Error{Op: "Post", URL: "http://remote/api/invitations/tok123/confirm", Err: cause})
	if err != cause || strings.Contains(err.Error(), "tok123") {
		t.Errorf("Expected the bare cause, got %v", err)
	}
}
