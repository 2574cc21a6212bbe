// Package line talks to the LINE Messaging API: it authenticates and parses
// webhook deliveries and sends text replies.
package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PabloGalante/myvfriend/internal/domain"
)

const SignatureHeader = "X-Line-Signature"

// ErrInvalidSignature means the body was not signed with the channel secret.
var ErrInvalidSignature = errors.New("line: invalid webhook signature")

// DeliveryMode picks which destination parsed messages get.
type DeliveryMode string

const (
	// DeliveryReply answers through the event's reply token.
	DeliveryReply DeliveryMode = "reply"
	// DeliveryPush answers by pushing to the sender's user ID.
	DeliveryPush DeliveryMode = "push"
)

func ParseDeliveryMode(s string) (DeliveryMode, error) {
	switch DeliveryMode(strings.ToLower(strings.TrimSpace(s))) {
	case DeliveryReply, "":
		return DeliveryReply, nil
	case DeliveryPush:
		return DeliveryPush, nil
	default:
		return "", fmt.Errorf("line: unknown delivery mode %q", s)
	}
}

// VerifySignature checks a webhook body against the base64 HMAC-SHA256
// digest LINE sends in X-Line-Signature.
func VerifySignature(secret, body []byte, signature string) error {
	if len(secret) == 0 {
		return fmt.Errorf("%w: channel secret is empty", ErrInvalidSignature)
	}
	if signature == "" {
		return fmt.Errorf("%w: signature is empty", ErrInvalidSignature)
	}

	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: not base64", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	if subtle.ConstantTimeCompare(mac.Sum(nil), got) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns the X-Line-Signature value for body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ─────────────────────────────────────────────
// Wire types
// ─────────────────────────────────────────────

type webhookBody struct {
	Destination string  `json:"destination"`
	Events      []event `json:"events"`
}

type event struct {
	Type           string   `json:"type"`
	ReplyToken     string   `json:"replyToken"`
	WebhookEventID string   `json:"webhookEventId"`
	Source         source   `json:"source"`
	Message        *message `json:"message"`
}

type source struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// Webhook turns signed webhook bodies into inbound messages.
type Webhook struct {
	secret []byte
	mode   DeliveryMode
}

func NewWebhook(channelSecret string, mode DeliveryMode) *Webhook {
	if mode == "" {
		mode = DeliveryReply
	}
	return &Webhook{secret: []byte(channelSecret), mode: mode}
}

// Parse verifies the signature and returns one InboundMessage per text
// message sent by a user. Every other event (follow, sticker, group
// messages, ...) is dropped.
func (w *Webhook) Parse(body []byte, signature string) ([]domain.InboundMessage, error) {
	if err := VerifySignature(w.secret, body, signature); err != nil {
		return nil, err
	}

	var wb webhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return nil, fmt.Errorf("line: decode webhook body: %w", err)
	}

	var out []domain.InboundMessage
	for _, ev := range wb.Events {
		if ev.Type != "message" || ev.Message == nil || ev.Message.Type != "text" {
			continue
		}
		if ev.Source.Type != "user" || ev.Source.UserID == "" {
			continue
		}

		in := domain.InboundMessage{
			UserID: domain.UserID(ev.Source.UserID),
			Text:   ev.Message.Text,
		}
		switch {
		case w.mode == DeliveryPush:
			in.Destination = domain.Durable(ev.Source.UserID)
		case ev.ReplyToken != "":
			in.Destination = domain.OneShot(ev.ReplyToken)
		default:
			continue
		}
		out = append(out, in)
	}
	return out, nil
}
