package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/PabloGalante/myvfriend/internal/adapters/storage/record"
	"github.com/PabloGalante/myvfriend/internal/domain"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
	"user_id" TEXT PRIMARY KEY,
	"document" TEXT NOT NULL,
	"updated_at" DATETIME NOT NULL
)`

const upsertSession = `
INSERT INTO sessions (user_id, document, updated_at) VALUES (?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`

// SessionStore keeps session records in a sqlite table, one row per user.
type SessionStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and prepares the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*SessionStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive and serialises
	// writers, which sqlite needs anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, createSessionsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite create sessions table: %w", err)
	}

	return &SessionStore{db: db, now: time.Now}, nil
}

func (s *SessionStore) Close() error {
	return s.db.Close()
}

func (s *SessionStore) Load(ctx context.Context, userID domain.UserID) (*domain.UserSession, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM sessions WHERE user_id = ?`, string(userID),
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewSession(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite load: %w", domain.ErrStoreUnavailable, err)
	}

	sess, err := record.Unmarshal(userID, []byte(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite: %w", domain.ErrStoreUnavailable, err)
	}
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, session *domain.UserSession) error {
	data, err := record.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: sqlite: %w", domain.ErrStoreUnavailable, err)
	}

	if _, err := s.db.ExecContext(ctx, upsertSession,
		string(session.UserID), string(data), s.now().UTC(),
	); err != nil {
		return fmt.Errorf("%w: sqlite save: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
