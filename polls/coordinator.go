// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"log/slog"
	"sync"

	"github.com/danielhkuo/quickly-rsvp/apperr"
	"github.com/danielhkuo/quickly-rsvp/models"
)

// Voter posts ballots to the remote API and returns the option's new count
type Voter interface {
	PostVote(ctx context.Context, eventID, pollID, optionID int64, invitationToken string) (int, error)
	PostUnvote(ctx context.Context, eventID, pollID, optionID int64, invitationToken string) (int, error)
}

// VoteStore receives confirmed ballots and is reloaded after each vote and unvote
type VoteStore interface {
	ApplyVoteResult(eventID, pollID, optionID int64, newVoteCount int, newUserVote int64) error
	Reload(ctx context.Context) error
}

type entry struct {
	eventID int64
	state   State
}

// Coordinator owns the per-poll choice state and drives votes through it.
// Different polls may have requests in flight at the same time; a poll that
// is busy rejects every further gesture.
type Coordinator struct {
	voter Voter
	store VoteStore

	mu    sync.Mutex
	polls map[int64]*entry
}

func New(voter Voter, store VoteStore) *Coordinator {
	return &Coordinator{
		voter: voter,
		store: store,
		polls: make(map[int64]*entry),
	}
}

// Seed rebuilds the poll table from a fresh invitation list. Polls with a
// request in flight are left alone. A settled poll keeps its selection,
// editing and error only while the server still reports the same vote.
func (c *Coordinator) Seed(invitations []models.Invitation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make(map[int64]*entry)
	for _, inv := range invitations {
		for _, p := range inv.Event.Polls {
			server := p.VotedOption()
			old, ok := c.polls[p.ID]
			switch {
			case ok && old.state.Busy:
				next[p.ID] = old
			case ok && old.state.UserVote == server:
				next[p.ID] = &entry{eventID: inv.Event.ID, state: old.state}
			default:
				st := Seeded(server)
				if ok {
					st.Error = old.state.Error
				}
				next[p.ID] = &entry{eventID: inv.Event.ID, state: st}
			}
		}
	}
	// In-flight polls that vanished still need somewhere to settle
	for id, old := range c.polls {
		if _, ok := next[id]; !ok && old.state.Busy {
			next[id] = old
		}
	}
	c.polls = next
}

func (c *Coordinator) State(pollID int64) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.polls[pollID]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

func (c *Coordinator) SelectOption(pollID, optionID int64) error {
	_, _, err := c.apply(pollID, input{ev: evSelect, option: optionID})
	return err
}

func (c *Coordinator) StartChangeVote(pollID int64) error {
	_, _, err := c.apply(pollID, input{ev: evStartChange})
	return err
}

func (c *Coordinator) CancelEdit(pollID int64) error {
	_, _, err := c.apply(pollID, input{ev: evCancelEdit})
	return err
}

func (c *Coordinator) DismissError(pollID int64) error {
	_, _, err := c.apply(pollID, input{ev: evDismiss})
	return err
}

// Vote submits optionID for pollID. A rejected gesture returns a
// ValidationError without touching the network or the state. A failed
// request leaves the poll in its prior phase with the error recorded on it.
func (c *Coordinator) Vote(ctx context.Context, pollID, optionID int64, invitationToken string) error {
	eventID, _, err := c.apply(pollID, input{ev: evBeginVote, option: optionID})
	if err != nil {
		return err
	}

	votes, err := c.voter.PostVote(ctx, eventID, pollID, optionID, invitationToken)
	if err != nil {
		slog.Warn("vote failed", "poll_id", pollID, "option_id", optionID, "error", err)
		c.settle(pollID, input{ev: evVoteFailed, message: apperr.Message(err)})
		return err
	}

	// The store is patched before the poll leaves busy so no later gesture
	// on this poll can be overtaken by this result
	if err := c.store.ApplyVoteResult(eventID, pollID, optionID, votes, optionID); err != nil {
		slog.Warn("failed to apply vote result", "poll_id", pollID, "error", err)
	}
	c.settle(pollID, input{ev: evVoteOK, option: optionID})

	// Reconcile counts with the server; the vote itself already succeeded
	if err := c.store.Reload(ctx); err != nil {
		slog.Warn("reload after vote failed", "poll_id", pollID, "error", err)
	}
	return nil
}

// Unvote withdraws the current vote on pollID
func (c *Coordinator) Unvote(ctx context.Context, pollID int64, invitationToken string) error {
	eventID, prior, err := c.apply(pollID, input{ev: evBeginUnvote})
	if err != nil {
		return err
	}

	votes, err := c.voter.PostUnvote(ctx, eventID, pollID, prior.UserVote, invitationToken)
	if err != nil {
		slog.Warn("unvote failed", "poll_id", pollID, "option_id", prior.UserVote, "error", err)
		c.settle(pollID, input{ev: evUnvoteFailed, message: apperr.Message(err)})
		return err
	}

	if err := c.store.ApplyVoteResult(eventID, pollID, prior.UserVote, votes, models.NoOption); err != nil {
		slog.Warn("failed to apply unvote result", "poll_id", pollID, "error", err)
	}
	c.settle(pollID, input{ev: evUnvoteOK})

	if err := c.store.Reload(ctx); err != nil {
		slog.Warn("reload after unvote failed", "poll_id", pollID, "error", err)
	}
	return nil
}

// settle ends the request in flight on pollID. The poll was marked busy by
// this request, so a refusal here means the table lost track of it.
func (c *Coordinator) settle(pollID int64, in input) {
	if _, _, err := c.apply(pollID, in); err != nil {
		slog.Error("failed to settle poll", "poll_id", pollID, "event", in.ev, "error", err)
	}
}

// apply runs one transition under the lock and returns the poll's event id
// and the state it held before
func (c *Coordinator) apply(pollID int64, in input) (int64, State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.polls[pollID]
	if !ok {
		return 0, State{}, apperr.Reject(apperr.ErrUnknownPoll)
	}
	prior := e.state
	next, err := transition(e.state, in)
	if err != nil {
		return e.eventID, prior, err
	}
	e.state = next
	return e.eventID, prior, nil
}
