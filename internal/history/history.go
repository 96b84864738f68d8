// Package history persists completed search summaries for later analysis.
// The store is optional: the bot runs without a database and simply skips
// recording when none is configured.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Entry is one completed search.
type Entry struct {
	ID          int64     `db:"id"`
	SenderID    string    `db:"sender_id"`
	Departure   string    `db:"departure"`
	Country     string    `db:"country"`
	NightsFrom  int       `db:"nights_from"`
	NightsTo    int       `db:"nights_to"`
	Adults      int       `db:"adults"`
	Children    int       `db:"children"`
	HotelsFound int       `db:"hotels_found"`
	MinPrice    string    `db:"min_price"`
	CreatedAt   time.Time `db:"created_at"`
}

// Store writes search history to Postgres.
type Store struct {
	db *sqlx.DB
}

// NewStore constructs a Store over an open connection.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const insertEntry = `
INSERT INTO search_history
	(sender_id, departure, country, nights_from, nights_to, adults, children, hotels_found, min_price, created_at)
VALUES
	(:sender_id, :departure, :country, :nights_from, :nights_to, :adults, :children, :hotels_found, :min_price, :created_at)`

// Record stores one completed search.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.NamedExecContext(ctx, insertEntry, e); err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}
