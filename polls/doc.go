// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package polls is the per-poll vote state machine and the coordinator that
reconciles it with the remote API.

# States

	Unvoted --select--> Unvoted(selected) --vote--> [busy] --ok--> Voted
	Voted --change--> Editing --cancel--> Voted
	Editing --select--> Editing(selected) --vote--> [busy] --ok--> Voted
	Voted --unvote--> [busy] --ok--> Unvoted

Busy is an overlay on the phase a request started from. A failed request
clears busy, keeps that phase and records the error on the poll. Every
accepted gesture clears the previous error; DismissError clears it without
a gesture. Gestures that are not allowed (voting the option already voted,
anything while busy) return a ValidationError and change nothing.

# Reconciliation

A successful vote or unvote patches the store with the returned count and
then reloads all invitations to correct the optimistic decrement of the
previous option. A failed reload after a successful request is only logged.

Seed is registered as a store load hook. It keeps polls with a request in
flight untouched, and keeps local selection and editing for polls whose vote
the server still agrees with.
*/
package polls
