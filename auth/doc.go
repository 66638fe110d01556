// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth owns the session credential and the header conventions of the
remote API.

# Session Provider

Nothing else in the module reads stored credentials directly. Components
receive a Provider:

	type Provider interface {
		Get() (Session, bool)
		Set(s Session) error
		Clear() error
	}

MemoryProvider keeps the session in process memory (tests, one-shot tools).
SQLProvider persists it in the session table created by db.CreateSchema, on
sqlite or postgres.

# Two-Factor Headers

Every remote call carries the session as a bearer token:

	Authorization: Bearer <session token>

Poll and confirm calls additionally carry the invitation's own token:

	Invitation-Token: <invitation token>

The session proves who the user is; the invitation token proves authority
over that one invitation.

# Token Fingerprints

Tokens never go to the log. Fingerprint gives a short HMAC-SHA256 prefix
that is stable for a given salt:

	slog.Info("vote posted", "invitation", auth.Fingerprint(token, salt))
*/
package auth
