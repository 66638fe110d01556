// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package view

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-rsvp/invitations"
	"github.com/danielhkuo/quickly-rsvp/models"
	"github.com/danielhkuo/quickly-rsvp/polls"
)

// Placeholders for missing event details
const (
	NotSpecified   = "not specified"
	ToBeDetermined = "to be determined"
)

// Bar tiers by share of the votes
const (
	TierPrimary   = "primary"
	TierSecondary = "secondary"
	TierTertiary  = "tertiary"
	TierMuted     = "muted"
)

// PollStates is where poll choice state is read from
type PollStates interface {
	State(pollID int64) (polls.State, bool)
}

// InvitationStates is where per-invitation confirm state is read from
type InvitationStates interface {
	Error(invitationID int64) string
	Confirming(invitationID int64) bool
}

type Card struct {
	InvitationID int64        `json:"invitation_id"`
	EventID      int64        `json:"event_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Date         string       `json:"date"`
	Time         string       `json:"time"`
	When         string       `json:"when,omitempty"`
	Location     string       `json:"location"`
	HasMap       bool         `json:"has_map"`
	Status       string       `json:"status"`
	Badge        string       `json:"badge"`
	CanRespond   bool         `json:"can_respond"`
	Confirming   bool         `json:"confirming"`
	Error        string       `json:"error,omitempty"`
	Polls        []PollWidget `json:"polls"`
	PollsNote    string       `json:"polls_note,omitempty"`
}

type PollWidget struct {
	PollID     int64       `json:"poll_id"`
	Question   string      `json:"question"`
	Options    []OptionRow `json:"options"`
	TotalVotes int         `json:"total_votes"`
	TotalLabel string      `json:"total_label"`
	Phase      string      `json:"phase"`
	Loading    bool        `json:"loading"`
	Error      string      `json:"error,omitempty"`
	Controls   Controls    `json:"controls"`
}

type OptionRow struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Votes    int    `json:"votes"`
	Percent  int    `json:"percent"`
	Tier     string `json:"tier"`
	Voted    bool   `json:"voted"`
	Selected bool   `json:"selected"`
	Enabled  bool   `json:"enabled"`
}

// Controls says which buttons of a poll widget are usable
type Controls struct {
	Vote        bool   `json:"vote"`
	VoteLabel   string `json:"vote_label"`
	Unvote      bool   `json:"unvote"`
	StartChange bool   `json:"start_change"`
	CancelEdit  bool   `json:"cancel_edit"`
}

// Percent is votes as a rounded share of total, 0 when nobody voted
func Percent(votes, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(votes)*100/float64(total) + 0.5))
}

func Tier(percent int) string {
	switch {
	case percent >= 40:
		return TierPrimary
	case percent >= 25:
		return TierSecondary
	case percent >= 10:
		return TierTertiary
	}
	return TierMuted
}

func TotalLabel(total int) string {
	if total == 1 {
		return "1 vote in total"
	}
	return fmt.Sprintf("%d votes in total", total)
}

func Badge(status string) string {
	switch status {
	case models.StatusAccepted:
		return "Accepted"
	case models.StatusDeclined:
		return "Declined"
	case models.StatusMaybe:
		return "Maybe"
	}
	return "Awaiting your answer"
}

// BuildCards renders every invitation. now anchors the relative event time.
func BuildCards(invs []models.Invitation, ps PollStates, is InvitationStates, now time.Time) []Card {
	cards := make([]Card, 0, len(invs))
	for _, inv := range invs {
		cards = append(cards, BuildCard(inv, ps, is, now))
	}
	return cards
}

func BuildCard(inv models.Invitation, ps PollStates, is InvitationStates, now time.Time) Card {
	ev := inv.Event
	c := Card{
		InvitationID: inv.ID,
		EventID:      ev.ID,
		Title:        ev.Title,
		Description:  ev.Description,
		Date:         NotSpecified,
		Time:         NotSpecified,
		Location:     ToBeDetermined,
		HasMap:       ev.Latitude != nil && ev.Longitude != nil,
		Status:       inv.Status,
		Badge:        Badge(inv.Status),
		CanRespond:   invitations.Offerable(inv),
		Polls:        []PollWidget{},
	}
	if ev.EventLocation != "" {
		c.Location = ev.EventLocation
	}

	date, hasDate := ev.EventDate.Time()
	clock, hasClock := ev.EventTime.Time()
	if hasDate {
		c.Date = date.Format("Mon, 02 Jan 2006")
	}
	if hasClock {
		c.Time = clock.Format("15:04")
	}
	if hasDate {
		at := date
		if hasClock {
			at = time.Date(date.Year(), date.Month(), date.Day(),
				clock.Hour(), clock.Minute(), 0, 0, date.Location())
		}
		c.When = humanize.RelTime(at, now, "ago", "from now")
	}

	if is != nil {
		c.Confirming = is.Confirming(inv.ID)
		c.Error = is.Error(inv.ID)
	}

	switch {
	case inv.Status != models.StatusAccepted:
		c.PollsNote = "Polls open once you accept the invitation."
	case len(ev.Polls) == 0:
		c.PollsNote = "No polls for this event."
	default:
		for _, p := range ev.Polls {
			st, ok := ps.State(p.ID)
			if !ok {
				st = polls.Seeded(p.VotedOption())
			}
			c.Polls = append(c.Polls, BuildPoll(p, st))
		}
	}
	return c
}

// BuildPoll renders one poll with its local choice state
func BuildPoll(p models.Poll, st polls.State) PollWidget {
	total := p.TotalVotes()
	w := PollWidget{
		PollID:     p.ID,
		Question:   p.Question,
		TotalVotes: total,
		TotalLabel: TotalLabel(total),
		Phase:      st.Phase.String(),
		Loading:    st.Busy,
		Error:      st.Error,
		Controls: Controls{
			Vote:        st.CanVote(),
			Unvote:      st.CanUnvote(),
			StartChange: st.CanStartChange(),
			CancelEdit:  st.CanCancelEdit(),
		},
	}

	switch {
	case st.Busy:
		w.Controls.VoteLabel = "Sending..."
	case st.Phase == polls.Editing:
		w.Controls.VoteLabel = "Confirm change"
	default:
		w.Controls.VoteLabel = "Vote"
	}

	for _, o := range p.Options {
		pct := Percent(o.Votes, total)
		w.Options = append(w.Options, OptionRow{
			ID:       o.ID,
			Text:     o.Text,
			Votes:    o.Votes,
			Percent:  pct,
			Tier:     Tier(pct),
			Voted:    st.UserVote != models.NoOption && st.UserVote == o.ID,
			Selected: st.Phase != polls.Voted && st.Selected == o.ID,
			Enabled:  st.CanSelect(),
		})
	}
	return w
}
