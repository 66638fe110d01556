// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"github.com/danielhkuo/quickly-rsvp/apperr"
	"github.com/danielhkuo/quickly-rsvp/models"
)

// Phase is the settled logical state of a poll for the current user
type Phase int

const (
	Unvoted Phase = iota
	Voted
	Editing
)

func (p Phase) String() string {
	switch p {
	case Unvoted:
		return "unvoted"
	case Voted:
		return "voted"
	case Editing:
		return "editing"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is one poll's local choice state. Busy overlays Phase: while a vote
// or unvote is in flight, Phase still holds the state it started from.
type State struct {
	Phase    Phase  `json:"phase"`
	Busy     bool   `json:"busy"`
	UserVote int64  `json:"user_vote"`
	Selected int64  `json:"selected"`
	Error    string `json:"error,omitempty"`
}

// Seeded is the state of a poll freshly read from the server
func Seeded(userVote int64) State {
	if userVote == models.NoOption {
		return State{Phase: Unvoted}
	}
	return State{Phase: Voted, UserVote: userVote, Selected: userVote}
}

// Options may be picked in these states
func (s State) CanSelect() bool {
	return !s.Busy && s.Phase != Voted
}

func (s State) CanVote() bool {
	switch {
	case s.Busy || s.Selected == models.NoOption:
		return false
	case s.Phase == Unvoted:
		return true
	case s.Phase == Editing:
		return s.Selected != s.UserVote
	}
	return false
}

func (s State) CanUnvote() bool {
	return !s.Busy && s.Phase == Voted
}

func (s State) CanStartChange() bool {
	return !s.Busy && s.Phase == Voted
}

func (s State) CanCancelEdit() bool {
	return !s.Busy && s.Phase == Editing
}

type event int

const (
	evSelect event = iota
	evStartChange
	evCancelEdit
	evBeginVote
	evVoteOK
	evVoteFailed
	evBeginUnvote
	evUnvoteOK
	evUnvoteFailed
	evDismiss
)

type input struct {
	ev      event
	option  int64
	message string
}

// transition is the only place a poll's State changes. A rejected input
// returns the state untouched along with a ValidationError.
func transition(s State, in input) (State, error) {
	switch in.ev {
	case evVoteOK, evVoteFailed, evUnvoteOK, evUnvoteFailed:
		if !s.Busy {
			return s, apperr.Invalid("no request in flight")
		}
	case evDismiss:
	default:
		if s.Busy {
			return s, apperr.Reject(apperr.ErrPollBusy)
		}
	}

	next := s
	switch in.ev {
	case evSelect:
		if s.Phase == Voted {
			// Options are locked until a change is started
			return s, nil
		}
		if in.option == models.NoOption {
			return s, apperr.Invalid("no option selected")
		}
		next.Selected = in.option
		next.Error = ""

	case evStartChange:
		if s.Phase != Voted {
			return s, apperr.Invalid("there is no vote to change")
		}
		next.Phase = Editing
		next.Selected = s.UserVote
		next.Error = ""

	case evCancelEdit:
		if s.Phase != Editing {
			return s, apperr.Invalid("not changing a vote")
		}
		next.Phase = Voted
		next.Selected = s.UserVote
		next.Error = ""

	case evBeginVote:
		switch {
		case in.option == models.NoOption:
			return s, apperr.Invalid("no option selected")
		case s.Phase == Voted:
			return s, apperr.Invalid("start changing the vote first")
		case s.Phase == Editing && in.option == s.UserVote:
			return s, apperr.Invalid("selection has not changed")
		}
		next.Busy = true
		next.Selected = in.option
		next.Error = ""

	case evVoteOK:
		next = State{Phase: Voted, UserVote: in.option, Selected: in.option}

	case evBeginUnvote:
		if s.Phase != Voted {
			return s, apperr.Invalid("there is no vote to cancel")
		}
		next.Busy = true
		next.Error = ""

	case evUnvoteOK:
		next = State{Phase: Unvoted}

	case evVoteFailed, evUnvoteFailed:
		next.Busy = false
		next.Error = in.message

	case evDismiss:
		next.Error = ""
	}
	return next, nil
}
