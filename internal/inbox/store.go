// Package inbox is the built-in endpoint contact messages are delivered to.
// Messages are kept in a SQLite database.
package inbox

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/conneroisu/folio/internal/contact"
	folioerrors "github.com/conneroisu/folio/internal/errors"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Message is a stored contact message.
type Message struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Body       string    `json:"message"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Store persists messages.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	body TEXT NOT NULL,
	received_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_received ON messages(received_at);
`

// Open opens or creates the database at path. ":memory:" keeps it in memory.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, folioerrors.WrapIO(err, folioerrors.ErrCodeInvalidPath, "failed to create inbox directory", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, folioerrors.WrapIO(err, folioerrors.ErrCodeStoreFailed, "failed to open inbox", path)
	}
	// A single connection keeps ":memory:" databases shared and serializes
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, folioerrors.WrapIO(err, folioerrors.ErrCodeStoreFailed, "failed to create inbox schema", path)
	}

	return &Store{db: db, path: path, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Save stores values as a new message.
func (s *Store) Save(ctx context.Context, values contact.Values) (Message, error) {
	msg := Message{
		ID:         uuid.NewString(),
		Name:       values.Name,
		Email:      values.Email,
		Body:       values.Message,
		ReceivedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, name, email, body, received_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.Name, msg.Email, msg.Body, msg.ReceivedAt.UnixMilli())
	if err != nil {
		return Message{}, folioerrors.WrapIO(err, folioerrors.ErrCodeStoreFailed, "failed to save message", s.path)
	}
	return msg, nil
}

// List returns up to limit messages, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Message, error) {
	query := `SELECT id, name, email, body, received_at FROM messages ORDER BY received_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, folioerrors.WrapIO(err, folioerrors.ErrCodeStoreFailed, "failed to list messages", s.path)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var received int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &received); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.ReceivedAt = time.UnixMilli(received).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// Count returns the number of stored messages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, folioerrors.WrapIO(err, folioerrors.ErrCodeStoreFailed, "failed to count messages", s.path)
	}
	return n, nil
}
