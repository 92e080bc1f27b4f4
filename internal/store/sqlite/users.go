package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/technicalserena/tunegram/internal/store"
)

// UserStore implements store.UserStore backed by SQLite.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Get(ctx context.Context, userID int64) (*store.UserRecord, error) {
	rec := store.UserRecord{UserID: userID}
	var premiumUntil, lastSentAt sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT display_name, premium_until, last_sent_at, created_at
		 FROM users WHERE user_id = ?`, userID,
	).Scan(&rec.DisplayName, &premiumUntil, &lastSentAt, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}

	if premiumUntil.Valid {
		rec.PremiumUntil = &premiumUntil.Time
	}
	if lastSentAt.Valid {
		rec.LastSentAt = &lastSentAt.Time
	}
	return &rec, nil
}

func (s *UserStore) EnsureExists(ctx context.Context, userID int64, displayName string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, display_name, created_at)
		 VALUES (?, ?, ?) ON CONFLICT (user_id) DO NOTHING`,
		userID, displayName, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("ensure user %d: %w", userID, err)
	}
	return nil
}

func (s *UserStore) SetPremiumUntil(ctx context.Context, userID int64, until time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, created_at, premium_until)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET premium_until = excluded.premium_until`,
		userID, time.Now().UTC(), until,
	)
	if err != nil {
		return fmt.Errorf("set premium for user %d: %w", userID, err)
	}
	return nil
}

func (s *UserStore) ClearPremium(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET premium_until = NULL WHERE user_id = ?`, userID,
	)
	if err != nil {
		return fmt.Errorf("clear premium for user %d: %w", userID, err)
	}
	return nil
}

func (s *UserStore) SetLastSentAt(ctx context.Context, userID int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, created_at, last_sent_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET last_sent_at = excluded.last_sent_at`,
		userID, time.Now().UTC(), at,
	)
	if err != nil {
		return fmt.Errorf("set last sent for user %d: %w", userID, err)
	}
	return nil
}

func (s *UserStore) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
