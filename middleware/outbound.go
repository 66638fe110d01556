// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gojektech/heimdall/v6"
)

// HeaderRequestID correlates a remote call with its log lines
const HeaderRequestID = "X-Request-ID"

type routeKey struct{}

// WithRoute tags an outbound request's context with its route template,
// e.g. "/invitations/{token}/confirm". The template is logged in place of
// the path, which may carry tokens or email addresses.
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey{}, route)
}

// Route is the template set by WithRoute, or "unknown" when there is none
func Route(req *http.Request) string {
	if r, ok := req.Context().Value(routeKey{}).(string); ok && r != "" {
		return r
	}
	return "unknown"
}

// RedactURL strips the request URL from a transport error
func RedactURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

// RequestLogger is a heimdall plugin that logs every outbound call to the
// remote API. Neither headers nor raw paths are logged, so tokens and
// addresses stay out of the log.
type RequestLogger struct {
	started sync.Map // *http.Request -> time.Time
}

var _ heimdall.Plugin = (*RequestLogger)(nil)

func NewRequestLogger() *RequestLogger {
	return &RequestLogger{}
}

func (l *RequestLogger) OnRequestStart(req *http.Request) {
	l.started.Store(req, time.Now())
	slog.Debug("remote request started",
		"method", req.Method,
		"route", Route(req),
		"request_id", req.Header.Get(HeaderRequestID),
	)
}

func (l *RequestLogger) OnRequestEnd(req *http.Request, res *http.Response) {
	slog.Info("remote request completed",
		"method", req.Method,
		"route", Route(req),
		"request_id", req.Header.Get(HeaderRequestID),
		"status", res.StatusCode,
		"duration_ms", l.elapsed(req).Milliseconds(),
	)
}

func (l *RequestLogger) OnError(req *http.Request, err error) {
	slog.Warn("remote request failed",
		"method", req.Method,
		"route", Route(req),
		"request_id", req.Header.Get(HeaderRequestID),
		"duration_ms", l.elapsed(req).Milliseconds(),
		"error", RedactURL(err),
	)
}

func (l *RequestLogger) elapsed(req *http.Request) time.Duration {
	v, ok := l.started.LoadAndDelete(req)
	if !ok {
		return 0
	}
	return time.Since(v.(time.Time))
}
