// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types shared by the
gateway, the store, and the local HTTP API.

# Request Types

  - LoginRequest: email, password
  - ConfirmRequest: status (accepted, declined, maybe)
  - SelectOptionRequest: option_id
  - VoteRequest: option_id (optional, defaults to the current selection)

# Response Types

  - LoginResponse: token, user
  - VoteResponse: option { id, votes } (vote and unvote endpoints)
  - SessionResponse: authenticated, user
  - PendingCountResponse: pending
  - MapLocation: latitude, longitude, label
  - ErrorResponse: error, message

# Domain Types

  - Invitation: id, token, status, embedded Event snapshot
  - Event: title, dates, location, coordinates, polls
  - Poll: question, options, userVote
  - PollOption: text and server-authoritative vote count
  - DateTime: the remote's { date, timezone } object

Struct tags carry go-playground/validator rules; the gateway validates every
decoded response against them.

# Constants

Invitation status values:

	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
	StatusMaybe    = "maybe"

NoOption (0) stands for "no vote" and "nothing selected".
*/
package models
