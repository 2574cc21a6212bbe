package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/PabloGalante/myvfriend/internal/adapters/storage/record"
	"github.com/PabloGalante/myvfriend/internal/domain"
)

// SessionStore keeps one JSON document per user in a directory.
type SessionStore struct {
	dir string
}

func NewSessionStore(dir string) (*SessionStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: creating %s: %w", dir, err)
	}
	return &SessionStore{dir: dir}, nil
}

// path escapes the user id so it can never leave the directory.
func (s *SessionStore) path(userID domain.UserID) string {
	return filepath.Join(s.dir, "session_"+url.PathEscape(string(userID))+".json")
}

func (s *SessionStore) Load(_ context.Context, userID domain.UserID) (*domain.UserSession, error) {
	data, err := os.ReadFile(s.path(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewSession(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: file store read: %w", domain.ErrStoreUnavailable, err)
	}

	sess, err := record.Unmarshal(userID, data)
	if err != nil {
		return nil, fmt.Errorf("%w: file store: %w", domain.ErrStoreUnavailable, err)
	}
	return sess, nil
}

// Save writes to a temp file and renames it over the old record, so a
// reader never sees a half written document.
func (s *SessionStore) Save(_ context.Context, session *domain.UserSession) error {
	data, err := json.MarshalIndent(record.FromSession(session), "", "    ")
	if err != nil {
		return fmt.Errorf("%w: file store encode: %w", domain.ErrStoreUnavailable, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: file store: %w", domain.ErrStoreUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: file store write: %w", domain.ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: file store close: %w", domain.ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), s.path(session.UserID)); err != nil {
		return fmt.Errorf("%w: file store rename: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
