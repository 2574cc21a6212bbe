package domain

import "context"

// LLMClient defines how the core application interacts with a text
// generation service. One call per chat message; callers do not retry.
type LLMClient interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// SessionStore persists one record per user.
//
// Load never reports "not found": a user without a record gets a fresh
// session from NewSession. Save overwrites the whole record and the last
// writer wins. Storage failures are wrapped with ErrStoreUnavailable.
type SessionStore interface {
	Load(ctx context.Context, userID UserID) (*UserSession, error)
	Save(ctx context.Context, session *UserSession) error
}

// Sender makes a single delivery attempt on the messaging channel.
type Sender interface {
	Send(ctx context.Context, dest Destination, text string) error
}
