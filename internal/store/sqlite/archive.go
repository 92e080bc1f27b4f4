package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/technicalserena/tunegram/internal/store"
)

// ArchiveStore implements store.ArchiveStore backed by SQLite.
type ArchiveStore struct {
	db *sql.DB
}

func NewArchiveStore(db *sql.DB) *ArchiveStore {
	return &ArchiveStore{db: db}
}

func (s *ArchiveStore) Save(ctx context.Context, msg store.ArchiveMessage) error {
	id := msg.ID
	if id == uuid.Nil {
		id = uuid.Must(uuid.NewV7())
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO archive_messages (id, message_id, kind, file_name, caption, posted_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (message_id) DO UPDATE
		 SET kind = excluded.kind, file_name = excluded.file_name, caption = excluded.caption`,
		id.String(), msg.MessageID, msg.Kind, msg.FileName, msg.Caption, msg.PostedAt,
	)
	if err != nil {
		return fmt.Errorf("save archive message %d: %w", msg.MessageID, err)
	}
	return nil
}

func (s *ArchiveStore) Search(ctx context.Context, query string, limit int) ([]store.ArchiveMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, message_id, kind, file_name, caption, posted_at
		 FROM archive_messages
		 WHERE LOWER(file_name) LIKE '%' || LOWER(?) || '%'
		    OR LOWER(caption) LIKE '%' || LOWER(?) || '%'
		 ORDER BY posted_at DESC
		 LIMIT ?`,
		query, query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search archive: %w", err)
	}
	defer rows.Close()

	var out []store.ArchiveMessage
	for rows.Next() {
		var m store.ArchiveMessage
		var id string
		if err := rows.Scan(&id, &m.MessageID, &m.Kind, &m.FileName, &m.Caption, &m.PostedAt); err != nil {
			return nil, fmt.Errorf("scan archive message: %w", err)
		}
		if parsed, perr := uuid.Parse(id); perr == nil {
			m.ID = parsed
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
