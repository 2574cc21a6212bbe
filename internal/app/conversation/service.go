package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PabloGalante/myvfriend/internal/app/prompt"
	"github.com/PabloGalante/myvfriend/internal/domain"
	"github.com/PabloGalante/myvfriend/internal/observability"
)

const (
	// FallbackReply is sent when the generation service fails.
	FallbackReply = "哎呀，好像出了點問題，我晚點再試試吧！"

	resetConfirmation = "✅ AI 個性已更新！請繼續聊天～"
	nameConfirmation  = "好的，%s！我記住你的名字了 😊"
)

// Deliverer sends a reply and reports whether it went through.
type Deliverer interface {
	Deliver(ctx context.Context, dest domain.Destination, text string) bool
}

type Service struct {
	llm       domain.LLMClient
	store     domain.SessionStore
	deliverer Deliverer
	locks     *userLocks
}

func NewService(
	llm domain.LLMClient,
	store domain.SessionStore,
	deliverer Deliverer,
) *Service {
	return &Service{
		llm:       llm,
		store:     store,
		deliverer: deliverer,
		locks:     newUserLocks(),
	}
}

// Outcome describes what happened to one inbound message.
type Outcome struct {
	Intent    Intent
	Reply     string
	Delivered bool
	// TurnRecorded is false when the reply could not be delivered to a
	// one-shot destination.
	TurnRecorded bool
	Session      *domain.UserSession
}

// HandleMessage runs one inbound message through
// load → classify → respond → deliver → persist.
//
// Only store failures are returned, wrapped with domain.ErrStoreUnavailable.
// A load failure aborts before anything is sent. Generation and delivery
// failures are handled here and never surface as errors.
func (s *Service) HandleMessage(ctx context.Context, in domain.InboundMessage) (*Outcome, error) {
	unlock := s.locks.Lock(in.UserID)
	defer unlock()

	log := observability.LoggerFromContext(ctx).With(
		"user_id", in.UserID,
		"destination_kind", in.Destination.Kind.String(),
	)

	session, err := s.store.Load(ctx, in.UserID)
	if err != nil {
		log.Errorw("failed to load session, turn aborted", "error", err)
		return nil, storeError("load", err)
	}
	if session.UserID == "" {
		session.UserID = in.UserID
	}

	text := strings.TrimSpace(in.Text)
	intent, name := Classify(text)
	log = log.With("intent", intent)

	var reply string
	switch intent {
	case IntentNameDeclaration:
		session.DisplayName = name
		reply = fmt.Sprintf(nameConfirmation, name)
	case IntentSettingsReset:
		if err := session.ResetTraits(); err != nil {
			log.Errorw("failed to reset traits", "error", err)
		}
		reply = resetConfirmation
	default:
		reply = s.generate(ctx, session, text)
	}

	delivered := s.deliverer.Deliver(ctx, in.Destination, reply)
	if !delivered {
		log.Warnw("reply was not delivered", "error", domain.ErrDeliveryFailure)
	}

	out := &Outcome{
		Intent:    intent,
		Reply:     reply,
		Delivered: delivered,
		Session:   session,
	}

	// A consumed one-shot handle cannot be retried later, so a turn the
	// user never saw is not recorded.
	if delivered || !in.Destination.IsOneShot() {
		session.AppendTurn(text, reply)
		out.TurnRecorded = true
	}

	if err := s.store.Save(ctx, session); err != nil {
		log.Errorw("failed to save session", "error", err)
		return out, storeError("save", err)
	}

	log.Infow("message handled",
		"delivered", delivered,
		"turn_recorded", out.TurnRecorded,
		"history_len", len(session.History),
	)
	return out, nil
}

// generate calls the LLM once. Any failure becomes FallbackReply.
func (s *Service) generate(ctx context.Context, session *domain.UserSession, text string) string {
	log := observability.LoggerFromContext(ctx).With("user_id", session.UserID)

	req := prompt.CompileSession(session, text)

	reply, err := s.llm.GenerateReply(ctx, req)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		log.Warnw("generation failed, using fallback", "error", fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err))
		return FallbackReply
	}
	return strings.TrimSpace(reply)
}

func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return fmt.Errorf("%s session: %w", op, err)
	}
	return fmt.Errorf("%s session: %w: %w", op, domain.ErrStoreUnavailable, err)
}
