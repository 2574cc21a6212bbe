package history

import (
	"context"

	"github.com/PabloGalante/myvfriend/internal/domain"
)

const (
	DefaultLimit = 20
	MaxLimit     = 200
)

// Service holds the logic of reading a user's stored conversation.
type Service struct {
	store domain.SessionStore
}

// NewService creates a history service from a SessionStore.
func NewService(store domain.SessionStore) *Service {
	return &Service{
		store: store,
	}
}

// View is a read-only snapshot of one user's record.
type View struct {
	UserID      domain.UserID
	DisplayName string
	Profile     domain.PersonalityProfile
	// Total is the full history length; Turns may be shorter.
	Total int
	Turns []domain.Turn
}

// GetUserHistory returns the last `limit` turns for a user, oldest first.
// If limit <= 0, DefaultLimit is used. A user without a record gets an empty
// view, not an error.
func (s *Service) GetUserHistory(
	ctx context.Context,
	userID domain.UserID,
	limit int,
) (*View, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	turns := session.History
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	return &View{
		UserID:      userID,
		DisplayName: session.DisplayName,
		Profile:     session.Profile,
		Total:       len(session.History),
		Turns:       append([]domain.Turn(nil), turns...),
	}, nil
}
