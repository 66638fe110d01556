// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package view

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const barWidth = 20

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiCyan   = "\x1b[36m"
	ansiGray   = "\x1b[90m"
)

var tierColors = map[string]string{
	TierPrimary:   ansiBlue,
	TierSecondary: ansiCyan,
	TierTertiary:  ansiGreen,
	TierMuted:     ansiGray,
}

// ColorEnabled reports whether f is a terminal worth colouring
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// TextRenderer writes cards as plain text
type TextRenderer struct {
	Color bool
}

func (r TextRenderer) paint(code, s string) string {
	if !r.Color {
		return s
	}
	return code + s + ansiReset
}

func (r TextRenderer) Render(w io.Writer, cards []Card) error {
	var b strings.Builder
	if len(cards) == 0 {
		b.WriteString("No invitations yet.\n")
	}
	for i, c := range cards {
		if i > 0 {
			b.WriteString("\n")
		}
		r.card(&b, c)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r TextRenderer) card(b *strings.Builder, c Card) {
	fmt.Fprintf(b, "%s  [%s]\n", r.paint(ansiBold, c.Title), r.badge(c))
	when := c.Date + " " + c.Time
	if c.When != "" {
		when += " (" + c.When + ")"
	}
	fmt.Fprintf(b, "  When:  %s\n", when)
	fmt.Fprintf(b, "  Where: %s\n", c.Location)
	if c.Description != "" {
		fmt.Fprintf(b, "  %s\n", c.Description)
	}
	if c.Confirming {
		b.WriteString("  Sending your answer...\n")
	} else if c.CanRespond {
		b.WriteString("  Answer: accepted | declined | maybe\n")
	}
	if c.Error != "" {
		fmt.Fprintf(b, "  %s\n", r.paint(ansiRed, "! "+c.Error))
	}

	if c.PollsNote != "" {
		fmt.Fprintf(b, "  %s\n", r.paint(ansiGray, c.PollsNote))
	}
	for _, p := range c.Polls {
		r.poll(b, p)
	}
}

func (r TextRenderer) badge(c Card) string {
	switch c.Badge {
	case "Accepted":
		return r.paint(ansiGreen, c.Badge)
	case "Declined":
		return r.paint(ansiRed, c.Badge)
	}
	return r.paint(ansiYellow, c.Badge)
}

func (r TextRenderer) poll(b *strings.Builder, p PollWidget) {
	fmt.Fprintf(b, "  Poll #%d: %s\n", p.PollID, p.Question)
	for _, o := range p.Options {
		mark := " "
		switch {
		case o.Voted:
			mark = "*"
		case o.Selected:
			mark = ">"
		}
		filled := o.Percent * barWidth / 100
		bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
		fmt.Fprintf(b, "   %s %-20s %s %3d%% (%d)\n", mark, o.Text, r.paint(tierColors[o.Tier], bar), o.Percent, o.Votes)
	}
	fmt.Fprintf(b, "    %s\n", p.TotalLabel)
	if p.Loading {
		b.WriteString("    " + p.Controls.VoteLabel + "\n")
	}
	if p.Error != "" {
		fmt.Fprintf(b, "    %s\n", r.paint(ansiRed, "! "+p.Error))
	}
}
