// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/quickly-rsvp/apperr"
	"github.com/danielhkuo/quickly-rsvp/auth"
	"github.com/danielhkuo/quickly-rsvp/models"
)

// Fetcher is the part of the remote gateway the store reads through.
type Fetcher interface {
	FetchInvitations(ctx context.Context, email string) ([]models.Invitation, error)
	FetchPolls(ctx context.Context, eventID int64, invitationToken string) ([]models.Poll, error)
}

// PollRef locates a poll and carries what is needed to act on it.
type PollRef struct {
	InvitationID    int64
	EventID         int64
	InvitationToken string
	Poll            models.Poll
}

// Store holds the signed-in user's invitations. It is the only shared mutable
// state of the workflow; everything else reads snapshots.
type Store struct {
	fetcher Fetcher
	session auth.Provider

	mu          sync.RWMutex
	invitations []models.Invitation
	user        string
	loaded      bool
	started     uint64 // sequence of the latest Load to begin
	applied     uint64 // sequence of the Load whose result is held
	onLoad      []func([]models.Invitation)

	subMu       sync.Mutex
	subscribers map[int]chan int
	nextSub     int
	lastPending int
}

func New(fetcher Fetcher, session auth.Provider) *Store {
	return &Store{
		fetcher:     fetcher,
		session:     session,
		subscribers: make(map[int]chan int),
		lastPending: -1,
	}
}

// OnLoad registers fn to receive a snapshot after every successful load and
// after Reset. Hooks run outside the store lock.
func (s *Store) OnLoad(fn func([]models.Invitation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLoad = append(s.onLoad, fn)
}

// Load fetches the invitations of userIdentifier, and the polls of every
// accepted one, and replaces the held list. On any failure the previous list
// is kept.
func (s *Store) Load(ctx context.Context, userIdentifier string) error {
	if _, ok := s.session.Get(); !ok {
		return &apperr.AuthError{Err: apperr.ErrNoSession}
	}
	if userIdentifier == "" {
		return apperr.Invalid("user identifier is required")
	}

	s.mu.Lock()
	s.started++
	seq := s.started
	s.mu.Unlock()

	invs, err := s.fetcher.FetchInvitations(ctx, userIdentifier)
	if err != nil {
		return fmt.Errorf("load invitations: %w", err)
	}

	// Polls are fetched concurrently, each with its invitation token
	g, gctx := errgroup.WithContext(ctx)
	for i := range invs {
		if invs[i].Status != models.StatusAccepted {
			continue
		}
		inv := &invs[i]
		g.Go(func() error {
			polls, err := s.fetcher.FetchPolls(gctx, inv.Event.ID, inv.Token)
			if err != nil {
				return fmt.Errorf("load polls of event %d: %w", inv.Event.ID, err)
			}
			inv.Event.Polls = polls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	if seq < s.applied {
		// A newer load already landed
		s.mu.Unlock()
		slog.Debug("discarding stale invitation load", "seq", seq, "applied", s.applied)
		return nil
	}
	s.invitations = invs
	s.user = userIdentifier
	s.loaded = true
	s.applied = seq
	snapshot := s.snapshotLocked()
	hooks := slices.Clone(s.onLoad)
	s.mu.Unlock()

	slog.Info("invitations loaded", "count", len(invs), "pending", countPending(snapshot))

	for _, fn := range hooks {
		fn(snapshot)
	}
	s.notify()
	return nil
}

// Reload repeats the last Load for the same user. This is the reconciling
// reload that corrects optimistic counts.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.RLock()
	user, loaded := s.user, s.loaded
	s.mu.RUnlock()

	if !loaded {
		return apperr.Invalid("invitations have not been loaded")
	}
	return s.Load(ctx, user)
}

// Reset drops everything held, e.g. on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	s.invitations = nil
	s.user = ""
	s.loaded = false
	// Loads still in flight are older than this and get discarded
	s.started++
	s.applied = s.started
	hooks := slices.Clone(s.onLoad)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(nil)
	}
	s.notify()
}

// ApplyVoteResult records a server-confirmed vote or unvote without a full
// reload. The voted option takes the server's count; a different prior vote
// in the same poll is decremented locally until the next reload corrects it.
func (s *Store) ApplyVoteResult(eventID, pollID, optionID int64, newVoteCount int, newUserVote int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll := s.pollLocked(eventID, pollID)
	if poll == nil {
		return apperr.Reject(apperr.ErrUnknownPoll)
	}
	target := findOption(poll, optionID)
	if target == nil {
		return apperr.Invalid("option %d is not part of poll %d", optionID, pollID)
	}

	prior := poll.VotedOption()
	target.Votes = newVoteCount
	if prior != models.NoOption && prior != optionID {
		if p := findOption(poll, prior); p != nil && p.Votes > 0 {
			p.Votes--
		}
	}

	if newUserVote == models.NoOption {
		poll.UserVote = nil
	} else {
		v := newUserVote
		poll.UserVote = &v
	}
	return nil
}

// SetInvitationStatus updates the status only; polls are left alone.
func (s *Store) SetInvitationStatus(invitationID int64, status string) error {
	switch status {
	case models.StatusPending, models.StatusAccepted, models.StatusDeclined, models.StatusMaybe:
	default:
		return apperr.Invalid("unknown status %q", status)
	}

	s.mu.Lock()
	found := false
	for i := range s.invitations {
		if s.invitations[i].ID == invitationID {
			s.invitations[i].Status = status
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return apperr.Reject(apperr.ErrUnknownInvitation)
	}
	s.notify()
	return nil
}

// Invitations returns a deep copy of the held list
func (s *Store) Invitations() []models.Invitation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) Invitation(invitationID int64) (models.Invitation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invitations {
		if inv.ID == invitationID {
			return inv.Clone(), true
		}
	}
	return models.Invitation{}, false
}

// FindPoll looks a poll up by id across all invitations
func (s *Store) FindPoll(pollID int64) (PollRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invitations {
		for _, p := range inv.Event.Polls {
			if p.ID == pollID {
				c := inv.Clone()
				for _, cp := range c.Event.Polls {
					if cp.ID == pollID {
						return PollRef{
							InvitationID:    inv.ID,
							EventID:         inv.Event.ID,
							InvitationToken: inv.Token,
							Poll:            cp,
						}, true
					}
				}
			}
		}
	}
	return PollRef{}, false
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// User is the identifier of the last successful load
func (s *Store) User() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// PendingCount is the number of invitations still awaiting an answer
func (s *Store) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countPending(s.invitations)
}

// Subscribe returns a channel that receives the pending count whenever it
// changes. Slow readers only ever see the latest value.
func (s *Store) Subscribe() (<-chan int, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ch := make(chan int, 1)
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) notify() {
	n := s.PendingCount()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	if n == s.lastPending {
		return
	}
	s.lastPending = n
	for _, ch := range s.subscribers {
		// Drop a stale unread value so the send never blocks
		select {
		case <-ch:
		default:
		}
		ch <- n
	}
}

func (s *Store) snapshotLocked() []models.Invitation {
	if s.invitations == nil {
		return nil
	}
	out := make([]models.Invitation, len(s.invitations))
	for i, inv := range s.invitations {
		out[i] = inv.Clone()
	}
	return out
}

func (s *Store) pollLocked(eventID, pollID int64) *models.Poll {
	for i := range s.invitations {
		if s.invitations[i].Event.ID != eventID {
			continue
		}
		polls := s.invitations[i].Event.Polls
		for j := range polls {
			if polls[j].ID == pollID {
				return &polls[j]
			}
		}
	}
	return nil
}

func findOption(p *models.Poll, optionID int64) *models.PollOption {
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			return &p.Options[i]
		}
	}
	return nil
}

func countPending(invs []models.Invitation) int {
	n := 0
	for _, inv := range invs {
		if inv.Status == models.StatusPending {
			n++
		}
	}
	return n
}
