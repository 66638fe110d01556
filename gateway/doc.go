// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package gateway is the authenticated HTTP boundary to the remote event API.

# Client

	client := gateway.New(gateway.Config{
		BaseURL:         cfg.APIURL,
		Timeout:         cfg.Timeout,
		FingerprintSalt: cfg.SessionSalt,
	}, sessionProvider)

The transport is a heimdall httpclient with retries disabled; every retry is
a user gesture. Outbound calls are logged by middleware.RequestLogger and
carry an X-Request-ID. Logs and NetworkError messages name the route
template shown below, never the path itself, so tokens and email addresses
stay out of them.

# Operations

	GET  /invitations/user/{email}                            FetchInvitations
	GET  /events/{eventID}/polls                              FetchPolls
	POST /invitations/{token}/confirm        {"status": ...}  ConfirmInvitation
	POST /events/{eventID}/polls/{pollID}/vote/{optionID}     PostVote
	POST /events/{eventID}/polls/{pollID}/unvote/{optionID}   PostUnvote
	POST /login_check                        {email,password} Login

All calls except Login send Authorization: Bearer <session>. Poll and confirm
calls also send Invitation-Token: <token>.

# Errors

  - apperr.AuthError: no session locally, or the remote answered 401/403
  - apperr.NetworkError: transport failure, timeout, cancelled context
  - apperr.ServerError: any other non-2xx, or a body that failed decoding
    or validation; the payload's message is kept verbatim
  - apperr.ValidationError: bad arguments, rejected before any request

Response bodies are validated with go-playground/validator against the tags
on the models types, so a malformed payload never reaches the store.
*/
package gateway
