package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PabloGalante/myvfriend/internal/domain"
)

const (
	DefaultAPIBaseURL = "https://api.line.me"

	// MaxTextRunes is the longest text message LINE accepts.
	MaxTextRunes = 5000

	replyPath = "/v2/bot/message/reply"
	pushPath  = "/v2/bot/message/push"
)

// Client sends text messages. Each Send is a single HTTP attempt; retries
// belong to the caller.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL, accessToken string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// Send implements domain.Sender.
func (c *Client) Send(ctx context.Context, dest domain.Destination, text string) error {
	msgs := []textMessage{{Type: "text", Text: truncate(text, MaxTextRunes)}}

	var (
		path    string
		payload any
	)
	switch dest.Kind {
	case domain.DestinationOneShot:
		path, payload = replyPath, replyRequest{ReplyToken: dest.Value, Messages: msgs}
	case domain.DestinationDurable:
		path, payload = pushPath, pushRequest{To: dest.Value, Messages: msgs}
	default:
		return fmt.Errorf("%w: unknown destination kind %d", domain.ErrDeliveryFailure, dest.Kind)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode request: %w", domain.ErrDeliveryFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", domain.ErrDeliveryFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 == 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: line status %d: %s", domain.ErrDeliveryUnauthorized, resp.StatusCode, bytes.TrimSpace(detail))
	case http.StatusBadRequest:
		// Invalid or already used reply token, or a malformed request.
		return fmt.Errorf("%w: line status %d: %s", domain.ErrDeliveryRejected, resp.StatusCode, bytes.TrimSpace(detail))
	default:
		return fmt.Errorf("%w: line status %d: %s", domain.ErrDeliveryFailure, resp.StatusCode, bytes.TrimSpace(detail))
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
