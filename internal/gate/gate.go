// Package gate decides whether a delivery to a user is currently
// allowed (cooldown) and whether the user holds premium access.
//
// Every operation is exactly one round trip against the user store;
// nothing is cached, so each check reflects the latest persisted state.
// The gate performs no retries — store failures propagate to the
// caller.
package gate

import (
	"context"
	"time"

	"github.com/technicalserena/tunegram/internal/store"
)

// Gate enforces the per-user cooldown and the premium policy.
type Gate struct {
	users    store.UserStore
	cooldown time.Duration
	now      func() time.Time
}

func New(users store.UserStore, cooldown time.Duration) *Gate {
	return &Gate{users: users, cooldown: cooldown, now: time.Now}
}

// Cooldown returns the configured cooldown window.
func (g *Gate) Cooldown() time.Duration { return g.cooldown }

// CanSend reports whether a delivery to userID is allowed right now.
// True when no record exists, the user has never received a delivery,
// or the cooldown window has elapsed since the last one.
//
// Two concurrent requests for the same user can both observe true
// before either marks the send; the window between CanSend and
// MarkSent is deliberately not atomic because the last-sent timestamp
// must only record successful deliveries.
func (g *Gate) CanSend(ctx context.Context, userID int64) (bool, error) {
	rec, err := g.users.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if rec == nil || rec.LastSentAt == nil {
		return true, nil
	}
	return g.now().Sub(*rec.LastSentAt) >= g.cooldown, nil
}

// RemainingWait returns how long userID must still wait before the next
// delivery. Zero when a send is allowed.
func (g *Gate) RemainingWait(ctx context.Context, userID int64) (time.Duration, error) {
	rec, err := g.users.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if rec == nil || rec.LastSentAt == nil {
		return 0, nil
	}
	wait := g.cooldown - g.now().Sub(*rec.LastSentAt)
	if wait < 0 {
		wait = 0
	}
	return wait, nil
}

// MarkSent records a successful delivery to userID.
func (g *Gate) MarkSent(ctx context.Context, userID int64) error {
	return g.users.SetLastSentAt(ctx, userID, g.now().UTC())
}

// IsPremium reports whether userID currently holds premium access.
func (g *Gate) IsPremium(ctx context.Context, userID int64) (bool, error) {
	rec, err := g.users.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if rec == nil || rec.PremiumUntil == nil {
		return false, nil
	}
	return rec.PremiumUntil.After(g.now()), nil
}

// GrantPremium sets the premium expiry to now + days and returns it.
// A prior expiry is overwritten, never extended.
func (g *Gate) GrantPremium(ctx context.Context, userID int64, days int) (time.Time, error) {
	until := g.now().UTC().Add(time.Duration(days) * 24 * time.Hour)
	if err := g.users.SetPremiumUntil(ctx, userID, until); err != nil {
		return time.Time{}, err
	}
	return until, nil
}

// RevokePremium clears the premium expiry. No-op when no record exists.
func (g *Gate) RevokePremium(ctx context.Context, userID int64) error {
	return g.users.ClearPremium(ctx, userID)
}
