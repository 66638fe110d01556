// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package view

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-rsvp/models"
	"github.com/danielhkuo/quickly-rsvp/polls"
	"github.com/danielhkuo/quickly-rsvp/testutil"
)

type pollStates map[int64]polls.State

func (p pollStates) State(id int64) (polls.State, bool) {
	st, ok := p[id]
	return st, ok
}

type invStates struct {
	errors     map[int64]string
	confirming map[int64]bool
}

func (s invStates) Error(id int64) string    { return s.errors[id] }
func (s invStates) Confirming(id int64) bool { return s.confirming[id] }

var now = time.Date(2025, 5, 29, 12, 30, 0, 0, time.UTC)

func TestPercent(t *testing.T) {
	tests := []struct {
		votes, total, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{5, 8, 63},
		{8, 8, 100},
	}
	for _, tt := range tests {
		if got := Percent(tt.votes, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.votes, tt.total, got, tt.want)
		}
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{100, TierPrimary},
		{40, TierPrimary},
		{39, TierSecondary},
		{25, TierSecondary},
		{24, TierTertiary},
		{10, TierTertiary},
		{9, TierMuted},
		{0, TierMuted},
	}
	for _, tt := range tests {
		if got := Tier(tt.percent); got != tt.want {
			t.Errorf("Tier(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestTotalLabel(t *testing.T) {
	if got := TotalLabel(1); got != "1 vote in total" {
		t.Errorf("TotalLabel(1) = %q", got)
	}
	if got := TotalLabel(0); got != "0 votes in total" {
		t.Errorf("TotalLabel(0) = %q", got)
	}
	if got := TotalLabel(8); got != "8 votes in total" {
		t.Errorf("TotalLabel(8) = %q", got)
	}
}

func TestBuildCard(t *testing.T) {
	lunch, poll := testutil.Lunch(testutil.VotedFor(1001))
	lunch.Event.Polls = []models.Poll{poll}

	c := BuildCard(lunch, pollStates{100: polls.Seeded(1001)}, invStates{}, now)

	if c.Date != "Sun, 01 Jun 2025" || c.Time != "12:30" {
		t.Errorf("Unexpected date/time: %q %q", c.Date, c.Time)
	}
	if c.When != "3 days from now" {
		t.Errorf("Unexpected relative time: %q", c.When)
	}
	if c.Location != "Canteen" || !c.HasMap {
		t.Errorf("Unexpected location: %q map=%v", c.Location, c.HasMap)
	}
	if c.Badge != "Accepted" || c.CanRespond {
		t.Errorf("Unexpected badge/respond: %q %v", c.Badge, c.CanRespond)
	}
	if len(c.Polls) != 1 {
		t.Fatalf("Expected 1 poll, got %d", len(c.Polls))
	}

	p := c.Polls[0]
	if p.TotalVotes != 8 || p.TotalLabel != "8 votes in total" {
		t.Errorf("Unexpected totals: %d %q", p.TotalVotes, p.TotalLabel)
	}
	if p.Options[0].Percent != 63 || p.Options[0].Tier != TierPrimary || !p.Options[0].Voted {
		t.Errorf("Unexpected first option: %+v", p.Options[0])
	}
	if p.Options[1].Percent != 38 || p.Options[1].Tier != TierSecondary || p.Options[1].Voted {
		t.Errorf("Unexpected second option: %+v", p.Options[1])
	}
	if p.Options[0].Enabled {
		t.Error("Options must be locked while voted")
	}
	if !p.Controls.Unvote || !p.Controls.StartChange || p.Controls.Vote || p.Controls.CancelEdit {
		t.Errorf("Unexpected controls: %+v", p.Controls)
	}
}

func TestBuildCardPlaceholders(t *testing.T) {
	inv := testutil.Party()
	is := invStates{
		errors:     map[int64]string{42: "Invitation expirée"},
		confirming: map[int64]bool{42: true},
	}

	c := BuildCard(inv, pollStates{}, is, now)

	if c.Date != NotSpecified || c.Time != NotSpecified || c.When != "" {
		t.Errorf("Expected unspecified date/time, got %q %q %q", c.Date, c.Time, c.When)
	}
	if c.Location != ToBeDetermined || c.HasMap {
		t.Errorf("Expected undetermined location, got %q", c.Location)
	}
	if !c.CanRespond || c.Badge != "Awaiting your answer" {
		t.Errorf("Expected answerable pending card, got %+v", c)
	}
	if !c.Confirming || c.Error != "Invitation expirée" {
		t.Errorf("Expected invitation state on card, got %+v", c)
	}
	if len(c.Polls) != 0 || c.PollsNote == "" {
		t.Errorf("Expected no polls with a note, got %+v", c.Polls)
	}
}

func TestBuildPollStates(t *testing.T) {
	_, poll := testutil.Lunch(nil)

	tests := []struct {
		name     string
		st       polls.State
		selected int64
		enabled  bool
		label    string
		vote     bool
	}{
		{"unvoted", polls.State{Phase: polls.Unvoted}, 0, true, "Vote", false},
		{"picked", polls.State{Phase: polls.Unvoted, Selected: 1002}, 1002, true, "Vote", true},
		{"editing", polls.State{Phase: polls.Editing, UserVote: 1001, Selected: 1002}, 1002, true, "Confirm change", true},
		{"busy", polls.State{Phase: polls.Unvoted, Busy: true, Selected: 1002}, 1002, false, "Sending...", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := BuildPoll(poll, tt.st)
			for _, o := range w.Options {
				if o.Selected != (o.ID == tt.selected) {
					t.Errorf("Option %d selected = %v", o.ID, o.Selected)
				}
				if o.Enabled != tt.enabled {
					t.Errorf("Option %d enabled = %v", o.ID, o.Enabled)
				}
			}
			if w.Controls.VoteLabel != tt.label || w.Controls.Vote != tt.vote {
				t.Errorf("Unexpected controls: %+v", w.Controls)
			}
			if w.Loading != tt.st.Busy || w.Phase != tt.st.Phase.String() {
				t.Errorf("Unexpected widget state: %+v", w)
			}
		})
	}
}

func TestBuildPollWithoutVotes(t *testing.T) {
	p := models.Poll{ID: 1, Question: "?", Options: []models.PollOption{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}}
	w := BuildPoll(p, polls.Seeded(models.NoOption))
	for _, o := range w.Options {
		if o.Percent != 0 || o.Tier != TierMuted {
			t.Errorf("Expected 0%% muted, got %+v", o)
		}
	}
	if w.TotalLabel != "0 votes in total" {
		t.Errorf("Unexpected total label %q", w.TotalLabel)
	}
}

func TestBuildCardsSeedsMissingState(t *testing.T) {
	lunch, poll := testutil.Lunch(testutil.VotedFor(1002))
	lunch.Event.Polls = []models.Poll{poll}

	cards := BuildCards([]models.Invitation{lunch, testutil.Party()}, pollStates{}, invStates{}, now)
	if len(cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(cards))
	}
	if cards[0].Polls[0].Phase != "voted" || !cards[0].Polls[0].Options[1].Voted {
		t.Errorf("Expected server vote to show, got %+v", cards[0].Polls[0])
	}
}

func TestTextRenderer(t *testing.T) {
	lunch, poll := testutil.Lunch(testutil.VotedFor(1001))
	lunch.Event.Polls = []models.Poll{poll}
	st := polls.Seeded(1001)
	st.Error = "Ce sondage est clos"

	cards := BuildCards([]models.Invitation{lunch, testutil.Party()}, pollStates{100: st}, invStates{}, now)

	var buf bytes.Buffer
	if err := (TextRenderer{}).Render(&buf, cards); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	testutil.AssertContains(t, out,
		"Team lunch  [Accepted]",
		"Where: Canteen",
		"Poll #100: Where do we eat?",
		"* Pizza",
		"63% (5)",
		"8 votes in total",
		"! Ce sondage est clos",
		"Birthday party  [Awaiting your answer]",
		"Where: "+ToBeDetermined,
		"Answer: accepted | declined | maybe",
	)
	if strings.Contains(out, "\x1b[") {
		t.Error("Plain output must not contain escape codes")
	}

	buf.Reset()
	if err := (TextRenderer{Color: true}).Render(&buf, cards); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), ansiReset) {
		t.Error("Expected escape codes in coloured output")
	}
}

func TestTextRendererEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (TextRenderer{}).Render(&buf, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if buf.String() != "No invitations yet.\n" {
		t.Errorf("Unexpected output %q", buf.String())
	}
}

func TestColorEnabledOnFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatalf("CreateTemp() error = %v", err)
	}
	defer f.Close()
	if ColorEnabled(f) {
		t.Error("A regular file is not a terminal")
	}
}
