package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/myvfriend/internal/adapters/storage/record"
	"github.com/PabloGalante/myvfriend/internal/domain"
)

const usersCollection = "users"

type Store struct {
	client *firestore.Client
	now    func() time.Time
}

// NewStore creates a Firestore store.
// Uses the project passed (MYVF_GCP_PROJECT). FIRESTORE_EMULATOR_HOST is
// honoured by the client library.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) userDoc(id domain.UserID) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(string(id))
}

// userRecord is record.Document plus bookkeeping only Firestore keeps.
type userRecord struct {
	record.Document
	UpdatedAt time.Time `firestore:"updated_at"`
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) Load(ctx context.Context, userID domain.UserID) (*domain.UserSession, error) {
	snap, err := s.userDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.NewSession(userID), nil
		}
		return nil, fmt.Errorf("%w: firestore Load: %w", domain.ErrStoreUnavailable, err)
	}

	var doc userRecord
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("%w: firestore Load decode: %w", domain.ErrStoreUnavailable, err)
	}
	return doc.ToSession(userID), nil
}

func (s *Store) Save(ctx context.Context, session *domain.UserSession) error {
	doc := userRecord{
		Document:  record.FromSession(session),
		UpdatedAt: s.now().UTC(),
	}

	if _, err := s.userDoc(session.UserID).Set(ctx, doc); err != nil {
		return fmt.Errorf("%w: firestore Save: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
