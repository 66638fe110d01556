// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store holds the invitations of the signed-in user, with the polls of
every accepted invitation, as last confirmed by the remote API.

Load fetches the list and then the polls of each accepted invitation
concurrently with errgroup; a failure anywhere leaves the previous list in
place. Loads racing each other are ordered by start, so an older result never
overwrites a newer one.

Between reloads the store is patched locally:

  - ApplyVoteResult sets the voted option to the server's count and
    decrements the previous vote of the same poll (floored at 0)
  - SetInvitationStatus changes one invitation's status

Readers get deep copies. Subscribe delivers the pending invitation count each
time it changes; OnLoad hooks receive a snapshot after each load and on Reset.
*/
package store
