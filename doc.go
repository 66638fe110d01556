// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the quickly-rsvp client service.

quickly-rsvp lets an invited guest answer event invitations (accepted,
declined, maybe) and vote in the polls of events they accepted. It talks to
the remote event API on the guest's behalf and serves cards and gestures to
the browser over a small local API.

# Starting the Server

	SESSION_SALT=... go run .

Or with flags:

	go run . -p 3319 -api http://localhost:8000/api -session-salt ...

# Configuration

Flags win over environment variables, which win over a .env file:

  - PORT (-p): Server port (default: 3319)
  - API_URL (-api): Remote event API base URL
  - API_TIMEOUT (-timeout): Remote request timeout, 0 for none (default: 10s)
  - DATABASE_URL (-d): Session database (default: file:quickly-rsvp.db)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SESSION_SALT (-session-salt): Secret keying token fingerprints in logs
  - -env: .env file to load (default: .env, ignored when missing)

# Architecture

  - gateway: authenticated calls to the remote API (heimdall, validator)
  - store: the user's invitations and their polls
  - polls: per-poll vote state machine and coordinator
  - invitations: accept/decline/maybe controller
  - view: cards, poll widgets, text rendering
  - handlers, router: local HTTP API
  - auth: session providers (memory, SQL)
  - db: session database
  - middleware: CORS, logging, JSON helpers, outbound request logging
  - apperr: error taxonomy
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
