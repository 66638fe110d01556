// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the quickly-rsvp local API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(handlers.NewApp(cfg, session))

# Endpoints

Health:

	GET /health

Session:

	POST   /session - Sign in through the remote API
	GET    /session - Current user, if any
	DELETE /session - Sign out

Invitations:

	GET    /invitations                  - Cards (?reload=1 to refetch)
	GET    /invitations/text             - Cards as plain text
	POST   /invitations/{id}/confirm     - Answer accepted, declined or maybe
	DELETE /invitations/{id}/error       - Dismiss the invitation's error
	GET    /invitations/{id}/map         - Coordinates for the map widget
	GET    /notifications/pending-count  - Invitations awaiting an answer

Poll gestures (each answers with the poll widget):

	POST   /polls/{id}/select  - Pick an option
	POST   /polls/{id}/change  - Start changing a vote
	POST   /polls/{id}/cancel  - Abandon the change
	POST   /polls/{id}/vote    - Vote the given or selected option
	POST   /polls/{id}/unvote  - Withdraw the vote
	DELETE /polls/{id}/error   - Dismiss the poll's error

A GET /invitations answering 401 with message login_required means the page
should go to the login screen.
*/
package router
