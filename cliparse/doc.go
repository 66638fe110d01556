// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags, environment variables
and an optional .env file.

# Usage

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Precedence

CLI flags override environment variables. Environment variables override the
.env file (godotenv never overwrites a variable that is already set).
Defaults fill whatever is left.

# Settings

	Flag           Env            Default
	-p             PORT           3319
	-api           API_URL        http://localhost:8000/api
	-timeout       API_TIMEOUT    10s (0 disables the timeout)
	-d             DATABASE_URL   file:quickly-rsvp.db
	-t             DATABASE_TYPE  sqlite
	-session-salt  SESSION_SALT   (required)
	-env           -              .env (missing file ignored unless given explicitly)

SESSION_SALT keys the token fingerprints written to the log.
*/
package cliparse
