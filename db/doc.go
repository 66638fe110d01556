// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the local session database and creates its schema.

# Drivers

Two database types are supported:

	conn, err := db.Open(db.TypeSQLite, "file:quickly-rsvp.db")
	conn, err := db.Open(db.TypePostgres, "postgres://...")

sqlite (modernc.org/sqlite, pure Go) is the default. postgres (lib/pq) is
for shared deployments of the local API. sqlite connections are capped at one
open connection.

# Schema

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	err = db.CreateSchema(conn)

Safe to call on every start (IF NOT EXISTS). Tables:

  - session: the stored bearer token and user identity, one row per slot

Remote data (invitations, polls) is never stored here; the remote API is the
only source of truth for it.
*/
package db
