// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/danielhkuo/quickly-rsvp/models"
)

// Header names sent to the remote API
const (
	HeaderAuthorization   = "Authorization"
	HeaderInvitationToken = "Invitation-Token"
)

// Session is the signed-in user's bearer credential and identity.
type Session struct {
	Token string
	User  models.User
}

// Provider gives the core explicit access to the session instead of having it
// read ambient storage.
type Provider interface {
	Get() (Session, bool)
	Set(s Session) error
	Clear() error
}

// BearerValue formats the Authorization header value
func BearerValue(token string) string {
	return "Bearer " + token
}

// MemoryProvider keeps the session in process memory.
type MemoryProvider struct {
	mu      sync.RWMutex
	session *Session
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

func (p *MemoryProvider) Get() (Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.session == nil || p.session.Token == "" {
		return Session{}, false
	}
	return *p.session, true
}

func (p *MemoryProvider) Set(s Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = &s
	return nil
}

func (p *MemoryProvider) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = nil
	return nil
}

// Fingerprint creates a one-way identifier for a token so logs can correlate
// requests without ever holding the secret
func Fingerprint(token, salt string) string {
	if token == "" {
		return ""
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(token))
	sum := h.Sum(nil)
	// First 6 bytes are plenty to tell tokens apart in a log
	return hex.EncodeToString(sum[:6])
}
