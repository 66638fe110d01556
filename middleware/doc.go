// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions for both
directions: the local API served to the browser and the calls made to the
remote API.

# Request Logging

Wrap local handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs method, path, status, remote, request_id and duration_ms once the
handler returns. The X-Request-ID sent by the browser is echoed in the
response; a new one is assigned when it is missing.

Outbound calls are logged by a heimdall plugin:

	client.AddPlugin(middleware.NewRequestLogger())

Logs method, route, X-Request-ID, status and duration_ms. The route is the
template the caller set with WithRoute, such as "/invitations/{token}/confirm";
neither the raw path nor any header is logged, so bearer tokens, invitation
tokens and email addresses stay out of the log.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, DELETE, OPTIONS with headers
Content-Type, Authorization, Invitation-Token, X-Request-ID.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies (unknown fields are refused):

	var req models.ConfirmRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP; used in the request log.
*/
package middleware
