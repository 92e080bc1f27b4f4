package store

import (
	"context"
	"time"
)

// UserRecord is the persisted state for one Telegram user.
// A record exists for every user who has ever messaged the bot
// privately; records are created lazily and never deleted.
type UserRecord struct {
	UserID       int64
	DisplayName  string
	PremiumUntil *time.Time // nil or past = not premium
	LastSentAt   *time.Time // nil = never received a delivery
	CreatedAt    time.Time
}

// UserStore persists user records.
type UserStore interface {
	// Get returns the record for userID, or (nil, nil) when none exists.
	Get(ctx context.Context, userID int64) (*UserRecord, error)

	// EnsureExists inserts a record with the given display name if none
	// exists. It must be atomic (insert-if-absent, not read-then-write)
	// and must never overwrite an existing record's fields.
	EnsureExists(ctx context.Context, userID int64, displayName string) error

	// SetPremiumUntil upserts the premium expiry for userID.
	SetPremiumUntil(ctx context.Context, userID int64, until time.Time) error

	// ClearPremium removes the premium expiry. No-op when no record exists.
	ClearPremium(ctx context.Context, userID int64) error

	// SetLastSentAt upserts the last successful delivery timestamp.
	SetLastSentAt(ctx context.Context, userID int64, at time.Time) error

	// ListUserIDs returns the IDs of every known user.
	ListUserIDs(ctx context.Context) ([]int64, error)
}
