// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"testing"
	"time"
)

func TestDateTimeParse(t *testing.T) {
	tests := []struct {
		name   string
		dt     *DateTime
		wantOK bool
		want   time.Time
	}{
		{"nil", nil, false, time.Time{}},
		{"empty", &DateTime{}, false, time.Time{}},
		{"php format", &DateTime{Date: "2025-06-01 18:30:00.000000", Timezone: "UTC"}, true,
			time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)},
		{"no micros", &DateTime{Date: "2025-06-01 18:30:00"}, true,
			time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)},
		{"date only", &DateTime{Date: "2025-06-01"}, true,
			time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"garbage", &DateTime{Date: "soon"}, false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.dt.Time()
			if ok != tt.wantOK {
				t.Fatalf("Time() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Time() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	vote := int64(7)
	lat := 48.85
	inv := Invitation{
		ID:     1,
		Status: StatusAccepted,
		Event: Event{
			ID:       2,
			Latitude: &lat,
			Polls: []Poll{{
				ID:       3,
				UserVote: &vote,
				Options:  []PollOption{{ID: 7, Text: "Pizza", Votes: 2}},
			}},
		},
	}

	c := inv.Clone()
	c.Event.Polls[0].Options[0].Votes = 99
	*c.Event.Polls[0].UserVote = 8
	*c.Event.Latitude = 0

	if inv.Event.Polls[0].Options[0].Votes != 2 {
		t.Error("Clone() shares option slice")
	}
	if *inv.Event.Polls[0].UserVote != 7 {
		t.Error("Clone() shares userVote pointer")
	}
	if *inv.Event.Latitude != 48.85 {
		t.Error("Clone() shares latitude pointer")
	}
}

func TestPollHelpers(t *testing.T) {
	p := Poll{Options: []PollOption{{ID: 1, Votes: 3}, {ID: 2, Votes: 4}}}
	if p.VotedOption() != NoOption {
		t.Errorf("VotedOption() = %d, want NoOption", p.VotedOption())
	}
	if p.TotalVotes() != 7 {
		t.Errorf("TotalVotes() = %d, want 7", p.TotalVotes())
	}

	for _, s := range []string{StatusAccepted, StatusDeclined, StatusMaybe} {
		if !IsConfirmStatus(s) {
			t.Errorf("IsConfirmStatus(%q) = false", s)
		}
	}
	if IsConfirmStatus(StatusPending) || IsConfirmStatus("yes") {
		t.Error("IsConfirmStatus accepted an invalid status")
	}
}
