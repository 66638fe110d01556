// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const currentSlot = "current"

// SQLProvider persists the session in the session table so it survives
// restarts, the way browser storage does for the web client.
type SQLProvider struct {
	db *sql.DB
}

func NewSQLProvider(db *sql.DB) *SQLProvider {
	return &SQLProvider{db: db}
}

func (p *SQLProvider) Get() (Session, bool) {
	var s Session
	err := p.db.QueryRow(`
		SELECT token, user_id, user_email, user_name FROM session WHERE slot = $1
	`, currentSlot).Scan(&s.Token, &s.User.ID, &s.User.Email, &s.User.Name)

	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false
	}
	if err != nil {
		slog.Error("failed to read session", "error", err)
		return Session{}, false
	}
	if s.Token == "" {
		return Session{}, false
	}
	return s, true
}

func (p *SQLProvider) Set(s Session) error {
	_, err := p.db.Exec(`
		INSERT INTO session (slot, token, user_id, user_email, user_name, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slot) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			user_email = excluded.user_email,
			user_name = excluded.user_name,
			saved_at = excluded.saved_at
	`, currentSlot, s.Token, s.User.ID, s.User.Email, s.User.Name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (p *SQLProvider) Clear() error {
	_, err := p.db.Exec(`DELETE FROM session WHERE slot = $1`, currentSlot)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
