// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"
)

// Invitation status constants
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
	StatusMaybe    = "maybe"
)

// NoOption marks the absence of a vote or selection.
const NoOption int64 = 0

// IsConfirmStatus reports whether status is one an invitee may confirm with.
func IsConfirmStatus(status string) bool {
	switch status {
	case StatusAccepted, StatusDeclined, StatusMaybe:
		return true
	}
	return false
}

// Request types

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type ConfirmRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined maybe"`
}

type SelectOptionRequest struct {
	OptionID int64 `json:"option_id" validate:"required,gt=0"`
}

// OptionID may be omitted; the poll's current selection is used then.
type VoteRequest struct {
	OptionID int64 `json:"option_id" validate:"gte=0"`
}

// Response types

type LoginResponse struct {
	Token string `json:"token" validate:"required"`
	User  *User  `json:"user" validate:"required"`
}

// VoteResponse is returned by both the vote and unvote endpoints.
type VoteResponse struct {
	Option *VotedOption `json:"option" validate:"required"`
}

type VotedOption struct {
	ID    int64 `json:"id"`
	Votes *int  `json:"votes" validate:"required,min=0"`
}

type SessionResponse struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

type PendingCountResponse struct {
	Pending int `json:"pending"`
}

// MapLocation is what the map widget needs to place an event.
type MapLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
}

// Domain types

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email" validate:"required"`
	Name  string `json:"name"`
}

type Invitation struct {
	ID     int64  `json:"id" validate:"required"`
	Token  string `json:"token"`
	Status string `json:"status" validate:"required,oneof=pending accepted declined maybe"`
	Event  Event  `json:"event"`
}

type Event struct {
	ID            int64     `json:"id" validate:"required"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	EventDate     *DateTime `json:"event_date"`
	EventTime     *DateTime `json:"event_time"`
	EventLocation string    `json:"event_location"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	Polls         []Poll    `json:"polls,omitempty" validate:"dive"`
}

type Poll struct {
	ID       int64        `json:"id" validate:"required"`
	Question string       `json:"question"`
	Options  []PollOption `json:"options" validate:"dive"`
	UserVote *int64       `json:"userVote"`
}

type PollOption struct {
	ID    int64  `json:"id" validate:"required"`
	Text  string `json:"text"`
	Votes int    `json:"votes" validate:"min=0"`
}

// DateTime is the remote's serialized date object.
type DateTime struct {
	Date     string `json:"date"`
	Timezone string `json:"timezone,omitempty"`
}

var dateLayouts = []string{
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Time parses the date in its own timezone, falling back to UTC.
func (d *DateTime) Time() (time.Time, bool) {
	if d == nil || d.Date == "" {
		return time.Time{}, false
	}

	loc := time.UTC
	if d.Timezone != "" {
		if l, err := time.LoadLocation(d.Timezone); err == nil {
			loc = l
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, d.Date, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// VotedOption returns the option the user voted for, or NoOption.
func (p Poll) VotedOption() int64 {
	if p.UserVote == nil {
		return NoOption
	}
	return *p.UserVote
}

// TotalVotes sums the counts across all options.
func (p Poll) TotalVotes() int {
	total := 0
	for _, opt := range p.Options {
		total += opt.Votes
	}
	return total
}

// Clone returns a deep copy so callers can't reach into store-owned slices.
func (inv Invitation) Clone() Invitation {
	out := inv
	out.Event.Polls = clonePolls(inv.Event.Polls)
	if inv.Event.Latitude != nil {
		lat := *inv.Event.Latitude
		out.Event.Latitude = &lat
	}
	if inv.Event.Longitude != nil {
		lng := *inv.Event.Longitude
		out.Event.Longitude = &lng
	}
	return out
}

func clonePolls(polls []Poll) []Poll {
	if polls == nil {
		return nil
	}
	out := make([]Poll, len(polls))
	for i, p := range polls {
		out[i] = p
		out[i].Options = append([]PollOption(nil), p.Options...)
		if p.UserVote != nil {
			v := *p.UserVote
			out[i].UserVote = &v
		}
	}
	return out
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
