package httpadapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/PabloGalante/myvfriend/internal/adapters/line"
	"github.com/PabloGalante/myvfriend/internal/app/conversation"
	"github.com/PabloGalante/myvfriend/internal/app/history"
	"github.com/PabloGalante/myvfriend/internal/domain"
	"github.com/PabloGalante/myvfriend/internal/observability"
)

const (
	WelcomeText = "Welcome to myvfriend!"

	// LINE bodies are small; anything past this is not a webhook.
	maxWebhookBody = 1 << 20
)

// MessageHandler is the conversation gateway as seen from the webhook.
type MessageHandler interface {
	HandleMessage(ctx context.Context, in domain.InboundMessage) (*conversation.Outcome, error)
}

type Options struct {
	AdminToken          string
	MaxConcurrentEvents int
	// WebhookRPS <= 0 disables rate limiting.
	WebhookRPS   float64
	WebhookBurst int
}

type Server struct {
	gateway MessageHandler
	history *history.Service
	webhook *line.Webhook
	opts    Options
}

func NewServer(gateway MessageHandler, hist *history.Service, webhook *line.Webhook, opts Options) http.Handler {
	if opts.MaxConcurrentEvents <= 0 {
		opts.MaxConcurrentEvents = 1
	}
	s := &Server{gateway: gateway, history: hist, webhook: webhook, opts: opts}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), withRequestID(), withLogging(), withCORS())

	var limiter *rate.Limiter
	if opts.WebhookRPS > 0 {
		burst := opts.WebhookBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.WebhookRPS), burst)
	}

	// ─────────────────────────────────────────────
	// Public routes
	// ─────────────────────────────────────────────
	router.GET("/", s.handleHome)
	router.GET("/healthz", s.handleHealthz)
	router.POST("/callback", withRateLimit(limiter), s.handleCallback)

	// ─────────────────────────────────────────────
	// Admin routes
	// ─────────────────────────────────────────────
	admin := router.Group("/users", requireAdmin(opts.AdminToken))
	admin.GET("/:id/history", s.handleGetHistory)

	return router
}

// ─────────────────────────────────────────────
// DTOs
// ─────────────────────────────────────────────

type turnResponse struct {
	User string `json:"user"`
	AI   string `json:"ai"`
}

type profileResponse struct {
	Personality map[string]int `json:"personality"`
	AIGender    string         `json:"ai_gender"`
	IsPaidUser  bool           `json:"is_paid_user"`
}

type historyResponse struct {
	UserID      string          `json:"user_id"`
	DisplayName string          `json:"display_name"`
	Profile     profileResponse `json:"profile"`
	Total       int             `json:"total"`
	Messages    []turnResponse  `json:"messages"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHome(c *gin.Context) {
	c.String(http.StatusOK, WelcomeText)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCallback(c *gin.Context) {
	log := observability.LoggerFromContext(c.Request.Context())

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	msgs, err := s.webhook.Parse(body, c.GetHeader(line.SignatureHeader))
	if err != nil {
		if errors.Is(err, line.ErrInvalidSignature) {
			log.Warnw("webhook rejected", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}
		log.Warnw("webhook body could not be parsed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	// The turn must finish even if LINE drops the connection.
	ctx := context.WithoutCancel(c.Request.Context())

	// Users run in parallel; one user's events run in arrival order.
	var g errgroup.Group
	g.SetLimit(s.opts.MaxConcurrentEvents)
	for _, batch := range groupByUser(msgs) {
		g.Go(func() error {
			var errs []error
			for _, msg := range batch {
				if _, err := s.gateway.HandleMessage(ctx, msg); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		})
	}
	if err := g.Wait(); err != nil {
		// Already logged per message by the gateway. Redelivery would only
		// repeat replies that were sent, so LINE still gets 200.
		log.Warnw("webhook batch finished with errors", "events", len(msgs), "error", err)
	}

	c.String(http.StatusOK, "OK")
}

func (s *Server) handleGetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	view, err := s.history.GetUserHistory(c.Request.Context(), domain.UserID(c.Param("id")), limit)
	if err != nil {
		observability.LoggerFromContext(c.Request.Context()).Errorw("history lookup failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		return
	}

	c.JSON(http.StatusOK, toHistoryResponse(view))
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// groupByUser splits a webhook batch into per-user runs, keeping the order
// of first appearance and the order of events within each user.
func groupByUser(msgs []domain.InboundMessage) [][]domain.InboundMessage {
	index := make(map[domain.UserID]int)
	var out [][]domain.InboundMessage
	for _, m := range msgs {
		i, ok := index[m.UserID]
		if !ok {
			i = len(out)
			index[m.UserID] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], m)
	}
	return out
}

func toHistoryResponse(v *history.View) historyResponse {
	personality := make(map[string]int, len(v.Profile.ActiveTraits()))
	for _, t := range v.Profile.ActiveTraits() {
		personality[string(t)] = v.Profile.Value(t)
	}

	msgs := make([]turnResponse, 0, len(v.Turns))
	for _, t := range v.Turns {
		msgs = append(msgs, turnResponse{User: t.UserText, AI: t.AIText})
	}

	return historyResponse{
		UserID:      string(v.UserID),
		DisplayName: v.DisplayName,
		Profile: profileResponse{
			Personality: personality,
			AIGender:    string(v.Profile.AIGender),
			IsPaidUser:  v.Profile.IsPaidUser,
		},
		Total:    v.Total,
		Messages: msgs,
	}
}
