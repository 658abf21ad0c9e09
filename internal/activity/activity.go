// Package activity persists engine events drained from the queue so admins
// can audit what the engine decided and when.
package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"campushub/internal/queue"
)

// Entry is one logged engine event.
type Entry struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record stores a queue event. Replayed events with a known id are ignored.
func (r *Repository) Record(ctx context.Context, evt queue.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, event_type, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		evt.ID, evt.Type, string(evt.Payload))
	return err
}

// Recent returns the latest entries, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_type, payload, created_at
		FROM activity_log
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var payload string
		if err := rows.Scan(&e.ID, &e.EventType, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Payload = json.RawMessage(payload)
		out = append(out, e)
	}
	return out, rows.Err()
}
