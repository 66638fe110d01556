// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package view turns invitations and their local poll state into cards.

BuildCards produces the JSON view model served to the browser; TextRenderer
writes the same cards as plain text, coloured only when ColorEnabled says the
output is a terminal.

Per option the share of votes is rounded to a whole percent (0 when the poll
has no votes) and bucketed into a bar tier:

	>= 40  primary
	>= 25  secondary
	>= 10  tertiary
	else   muted
*/
package view
