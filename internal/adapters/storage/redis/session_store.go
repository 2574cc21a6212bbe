package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PabloGalante/myvfriend/internal/adapters/storage/record"
	"github.com/PabloGalante/myvfriend/internal/domain"
)

const keyPrefix = "myvfriend:session:"

type Options struct {
	Addr     string
	Password string
	DB       int
	// TTL expires idle records. Zero keeps them forever.
	TTL time.Duration
}

// SessionStore keeps each session record as a JSON string value.
type SessionStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewSessionStore connects and pings the server.
func NewSessionStore(ctx context.Context, opts Options) (*SessionStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return NewSessionStoreWithClient(client, opts.TTL), nil
}

// NewSessionStoreWithClient wraps an existing client, e.g. a cluster client.
func NewSessionStoreWithClient(client goredis.UniversalClient, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Close() error {
	return s.client.Close()
}

func key(userID domain.UserID) string {
	return keyPrefix + string(userID)
}

func (s *SessionStore) Load(ctx context.Context, userID domain.UserID) (*domain.UserSession, error) {
	data, err := s.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.NewSession(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get: %w", domain.ErrStoreUnavailable, err)
	}

	sess, err := record.Unmarshal(userID, data)
	if err != nil {
		return nil, fmt.Errorf("%w: redis: %w", domain.ErrStoreUnavailable, err)
	}
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, session *domain.UserSession) error {
	data, err := record.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: redis: %w", domain.ErrStoreUnavailable, err)
	}
	if err := s.client.Set(ctx, key(session.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
