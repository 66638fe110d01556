// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"errors"
	"testing"

	"github.com/danielhkuo/quickly-rsvp/apperr"
)

func TestTransition(t *testing.T) {
	unvoted := State{Phase: Unvoted}
	picked := State{Phase: Unvoted, Selected: 2}
	voted := State{Phase: Voted, UserVote: 1, Selected: 1}
	editing := State{Phase: Editing, UserVote: 1, Selected: 2}
	busy := State{Phase: Unvoted, Busy: true, Selected: 2}
	failed := State{Phase: Unvoted, Selected: 2, Error: "boom"}

	tests := []struct {
		name    string
		from    State
		in      input
		want    State
		wantErr bool
	}{
		{"select when unvoted", unvoted, input{ev: evSelect, option: 2}, picked, false},
		{"select clears error", failed, input{ev: evSelect, option: 3}, State{Phase: Unvoted, Selected: 3}, false},
		{"select ignored when voted", voted, input{ev: evSelect, option: 2}, voted, false},
		{"select nothing ignored when voted", voted, input{ev: evSelect}, voted, false},
		{"select while editing", State{Phase: Editing, UserVote: 1, Selected: 1}, input{ev: evSelect, option: 2}, editing, false},
		{"select nothing", unvoted, input{ev: evSelect}, unvoted, true},

		{"start change", voted, input{ev: evStartChange}, State{Phase: Editing, UserVote: 1, Selected: 1}, false},
		{"start change without vote", unvoted, input{ev: evStartChange}, unvoted, true},
		{"start change twice", editing, input{ev: evStartChange}, editing, true},

		{"cancel edit", editing, input{ev: evCancelEdit}, voted, false},
		{"cancel when not editing", voted, input{ev: evCancelEdit}, voted, true},

		{"begin vote", picked, input{ev: evBeginVote, option: 2}, busy, false},
		{"begin vote without option", unvoted, input{ev: evBeginVote}, unvoted, true},
		{"begin vote while voted", voted, input{ev: evBeginVote, option: 1}, voted, true},
		{"begin vote same as current", State{Phase: Editing, UserVote: 1, Selected: 1}, input{ev: evBeginVote, option: 1}, State{Phase: Editing, UserVote: 1, Selected: 1}, true},
		{"begin vote from editing", editing, input{ev: evBeginVote, option: 2}, State{Phase: Editing, Busy: true, UserVote: 1, Selected: 2}, false},
		{"begin vote while busy", busy, input{ev: evBeginVote, option: 2}, busy, true},

		{"vote ok", busy, input{ev: evVoteOK, option: 2}, State{Phase: Voted, UserVote: 2, Selected: 2}, false},
		{"vote failed", busy, input{ev: evVoteFailed, message: "closed"}, State{Phase: Unvoted, Selected: 2, Error: "closed"}, false},
		{"vote ok when idle", picked, input{ev: evVoteOK, option: 2}, picked, true},

		{"begin unvote", voted, input{ev: evBeginUnvote}, State{Phase: Voted, Busy: true, UserVote: 1, Selected: 1}, false},
		{"begin unvote while editing", editing, input{ev: evBeginUnvote}, editing, true},
		{"begin unvote without vote", unvoted, input{ev: evBeginUnvote}, unvoted, true},
		{"unvote ok", State{Phase: Voted, Busy: true, UserVote: 1, Selected: 1}, input{ev: evUnvoteOK}, unvoted, false},

		{"dismiss", failed, input{ev: evDismiss}, picked, false},
		{"dismiss while busy", State{Phase: Unvoted, Busy: true, Error: "x"}, input{ev: evDismiss}, State{Phase: Unvoted, Busy: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transition(tt.from, tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("transition() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperr.IsValidation(err) {
				t.Errorf("Expected ValidationError, got %T", err)
			}
			if got != tt.want {
				t.Errorf("transition() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBusyRejectsGestures(t *testing.T) {
	busy := State{Phase: Voted, Busy: true, UserVote: 1, Selected: 1}
	for _, ev := range []event{evSelect, evStartChange, evCancelEdit, evBeginVote, evBeginUnvote} {
		_, err := transition(busy, input{ev: ev, option: 2})
		if !errors.Is(err, apperr.ErrPollBusy) {
			t.Errorf("event %d: expected ErrPollBusy, got %v", ev, err)
		}
	}
}

func TestEditingNeverWithoutVote(t *testing.T) {
	// Walk every input from every reachable state and check the invariant
	seen := map[State]bool{}
	queue := []State{Seeded(0), Seeded(1)}
	inputs := []input{
		{ev: evSelect, option: 1}, {ev: evSelect, option: 2},
		{ev: evStartChange}, {ev: evCancelEdit},
		{ev: evBeginVote, option: 1}, {ev: evBeginVote, option: 2},
		{ev: evVoteOK, option: 1}, {ev: evVoteOK, option: 2},
		{ev: evVoteFailed, message: "x"},
		{ev: evBeginUnvote}, {ev: evUnvoteOK}, {ev: evUnvoteFailed, message: "y"},
		{ev: evDismiss},
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if seen[s] {
			continue
		}
		seen[s] = true

		if s.Phase == Editing && s.UserVote == 0 {
			t.Fatalf("Reached editing without a vote: %+v", s)
		}
		if s.Phase == Voted && s.UserVote == 0 {
			t.Fatalf("Reached voted without a vote: %+v", s)
		}
		for _, in := range inputs {
			next, err := transition(s, in)
			if err == nil {
				queue = append(queue, next)
			}
		}
	}
}

func TestDerivedControls(t *testing.T) {
	tests := []struct {
		name                               string
		s                                  State
		vote, unvote, change, cancel, pick bool
	}{
		{"unvoted nothing picked", State{Phase: Unvoted}, false, false, false, false, true},
		{"unvoted picked", State{Phase: Unvoted, Selected: 2}, true, false, false, false, true},
		{"voted", State{Phase: Voted, UserVote: 1, Selected: 1}, false, true, true, false, false},
		{"editing unchanged", State{Phase: Editing, UserVote: 1, Selected: 1}, false, false, false, true, true},
		{"editing changed", State{Phase: Editing, UserVote: 1, Selected: 2}, true, false, false, true, true},
		{"busy", State{Phase: Voted, Busy: true, UserVote: 1, Selected: 1}, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.s.CanVote() != tt.vote {
				t.Errorf("CanVote() = %v", tt.s.CanVote())
			}
			if tt.s.CanUnvote() != tt.unvote {
				t.Errorf("CanUnvote() = %v", tt.s.CanUnvote())
			}
			if tt.s.CanStartChange() != tt.change {
				t.Errorf("CanStartChange() = %v", tt.s.CanStartChange())
			}
			if tt.s.CanCancelEdit() != tt.cancel {
				t.Errorf("CanCancelEdit() = %v", tt.s.CanCancelEdit())
			}
			if tt.s.CanSelect() != tt.pick {
				t.Errorf("CanSelect() = %v", tt.s.CanSelect())
			}
		})
	}
}
