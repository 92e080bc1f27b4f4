package bot

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/technicalserena/tunegram/internal/store"
)

// Broadcaster fans a message out to every known user, throttled so a
// large user base does not trip Telegram's flood limits.
type Broadcaster struct {
	users   store.UserStore
	limiter *rate.Limiter
	send    func(ctx context.Context, chatID int64, text string) error
}

func NewBroadcaster(users store.UserStore, limiter *rate.Limiter, send func(ctx context.Context, chatID int64, text string) error) *Broadcaster {
	return &Broadcaster{users: users, limiter: limiter, send: send}
}

// Broadcast sends text to every user ID in the store once and returns
// the number of successful sends. Per-user failures are logged and
// skipped; a partial broadcast is accepted and never resumed.
func (br *Broadcaster) Broadcast(ctx context.Context, text string) int {
	ids, err := br.users.ListUserIDs(ctx)
	if err != nil {
		slog.Error("broadcast: list users failed", "error", err)
		return 0
	}

	count := 0
	for _, id := range ids {
		if err := br.limiter.Wait(ctx); err != nil {
			slog.Warn("broadcast aborted", "sent", count, "error", err)
			return count
		}
		if err := br.send(ctx, id, text); err != nil {
			slog.Warn("broadcast send failed", "user_id", id, "error", err)
			continue
		}
		count++
	}
	return count
}
