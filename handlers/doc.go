// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers turns HTTP requests into invitation and poll gestures.

# Handler Types

Each handler is a struct holding the shared *App:

  - SessionHandler: sign in and out through the remote API
  - InvitationHandler: invitation cards, answers, map and pending count
  - PollHandler: select, change, cancel, vote, unvote

The App is built once from the configuration and a session provider:

	app := handlers.NewApp(cfg, session)
	pollHandler := handlers.NewPollHandler(app)

# Responses

Request bodies are validated with go-playground/validator; a malformed body
answers 400. A gesture answers with the card or poll widget as it stands
afterwards, with the status apperr.HTTPStatus gives its error:

	200  done
	404  unknown poll or invitation
	409  a request for it is already in flight
	422  the gesture is not allowed in the current state
	401  the session is missing or was refused
	502  the remote API answered with a failure
	504  the remote API could not be reached

Failures of the remote are also kept on the poll or invitation until the
next gesture or a dismiss.
*/
package handlers
