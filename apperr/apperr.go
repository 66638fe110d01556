// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package apperr defines the error taxonomy shared by the gateway, the store,
// the poll coordinator and the invitation controller.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoSession         = errors.New("no session credential")
	ErrPollBusy          = errors.New("a request for this poll is already in flight")
	ErrInvitationBusy    = errors.New("a request for this invitation is already in flight")
	ErrUnknownPoll       = errors.New("unknown poll")
	ErrUnknownInvitation = errors.New("unknown invitation")
)

// AuthError means the session credential is missing or was rejected.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return "auth: " + e.Message
	}
	if e.Err != nil {
		return "auth: " + e.Err.Error()
	}
	return "auth: unauthorized"
}

func (e *AuthError) Unwrap() error { return e.Err }

// NetworkError means the request never completed.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError means the request completed with a failure status or a payload
// that didn't match the expected shape. Message is the server's own text when
// it sent one.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server: %d: %s", e.Status, e.Message)
}

// ValidationError is a client-side precondition failure, raised before any
// network call.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError from a format string.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Reject wraps a sentinel as a ValidationError.
func Reject(sentinel error) error {
	return &ValidationError{Message: sentinel.Error(), Err: sentinel}
}

func IsAuth(err error) bool {
	var e *AuthError
	return errors.As(err, &e)
}

func IsNetwork(err error) bool {
	var e *NetworkError
	return errors.As(err, &e)
}

func IsServer(err error) bool {
	var e *ServerError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// Message is the text shown next to the failing poll or invitation.
// Server messages pass through verbatim.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var se *ServerError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return http.StatusText(se.Status)
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Error()
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return "network error: " + ne.Err.Error()
	}
	return err.Error()
}

// HTTPStatus maps an error onto the status the local API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnknownPoll), errors.Is(err, ErrUnknownInvitation):
		return http.StatusNotFound
	case errors.Is(err, ErrPollBusy), errors.Is(err, ErrInvitationBusy):
		return http.StatusConflict
	case IsAuth(err):
		return http.StatusUnauthorized
	case IsValidation(err):
		return http.StatusUnprocessableEntity
	case IsNetwork(err):
		return http.StatusGatewayTimeout
	case IsServer(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
