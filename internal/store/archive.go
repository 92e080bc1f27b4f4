package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Attachment kinds recorded in the archive index, in the order the
// resolver checks them.
const (
	KindDocument = "document"
	KindAudio    = "audio"
	KindVideo    = "video"
)

// ArchiveMessage is one indexed post from the curated channel. The bot
// records channel posts as it sees them; /file lookups search this
// index and deliver matches by copying the original channel message.
type ArchiveMessage struct {
	ID        uuid.UUID
	MessageID int    // Telegram message ID inside the channel
	Kind      string // KindDocument, KindAudio, KindVideo, or "" for text-only posts
	FileName  string
	Caption   string
	PostedAt  time.Time
}

// ArchiveStore persists the channel message index.
type ArchiveStore interface {
	// Save upserts an index entry keyed by MessageID (channel posts can
	// be edited; the latest metadata wins).
	Save(ctx context.Context, msg ArchiveMessage) error

	// Search returns up to limit entries whose file name or caption
	// contains query case-insensitively, most recent post first.
	Search(ctx context.Context, query string, limit int) ([]ArchiveMessage, error)
}

// Stores bundles the persistent stores behind one handle, so the
// wiring code can swap backends without touching call sites.
type Stores struct {
	Users   UserStore
	Archive ArchiveStore
}
