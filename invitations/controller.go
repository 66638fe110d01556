// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package invitations

import (
	"context"
	"log/slog"
	"sync"

	"github.com/danielhkuo/quickly-rsvp/apperr"
	"github.com/danielhkuo/quickly-rsvp/models"
)

// Confirmer sends a status answer to the remote API
type Confirmer interface {
	ConfirmInvitation(ctx context.Context, invitationToken, status string) (models.Invitation, error)
}

// StatusStore records a confirmed status locally
type StatusStore interface {
	SetInvitationStatus(invitationID int64, status string) error
}

// Controller applies accept, decline and maybe answers to invitations. Each
// invitation has at most one answer in flight and its own error slot.
type Controller struct {
	confirmer Confirmer
	store     StatusStore

	mu         sync.Mutex
	confirming map[int64]bool
	errors     map[int64]string
}

func New(confirmer Confirmer, store StatusStore) *Controller {
	return &Controller{
		confirmer:  confirmer,
		store:      store,
		confirming: make(map[int64]bool),
		errors:     make(map[int64]string),
	}
}

// Offerable reports whether inv can still be answered
func Offerable(inv models.Invitation) bool {
	return inv.Status == models.StatusPending
}

// Confirm answers invitationID with status. On success the store takes the
// new status; polls are not touched until the next load. On failure the error
// is kept on the invitation and the status is unchanged.
func (c *Controller) Confirm(ctx context.Context, invitationToken string, invitationID int64, status string) error {
	if !models.IsConfirmStatus(status) {
		return apperr.Invalid("status must be accepted, declined or maybe")
	}
	if invitationToken == "" {
		return apperr.Invalid("invitation token is missing")
	}

	c.mu.Lock()
	if c.confirming[invitationID] {
		c.mu.Unlock()
		return apperr.Reject(apperr.ErrInvitationBusy)
	}
	c.confirming[invitationID] = true
	delete(c.errors, invitationID)
	c.mu.Unlock()

	frag, err := c.confirmer.ConfirmInvitation(ctx, invitationToken, status)
	if err == nil {
		// The server's answer wins when it sends one
		if frag.Status != "" {
			status = frag.Status
		}
		err = c.store.SetInvitationStatus(invitationID, status)
	}

	c.mu.Lock()
	delete(c.confirming, invitationID)
	if err != nil {
		c.errors[invitationID] = apperr.Message(err)
	}
	c.mu.Unlock()

	if err != nil {
		slog.Warn("invitation confirm failed", "invitation_id", invitationID, "status", status, "error", err)
		return err
	}
	slog.Info("invitation confirmed", "invitation_id", invitationID, "status", status)
	return nil
}

// Error is the last failure message for invitationID, if any
func (c *Controller) Error(invitationID int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors[invitationID]
}

func (c *Controller) Confirming(invitationID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirming[invitationID]
}

func (c *Controller) DismissError(invitationID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.errors, invitationID)
}

// Reset forgets all errors, e.g. on logout
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.errors)
}
