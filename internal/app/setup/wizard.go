// Package setup walks a user through choosing their AI friend's
// personality on a terminal.
package setup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PabloGalante/myvfriend/internal/domain"
	"github.com/PabloGalante/myvfriend/internal/observability"
)

const (
	introText       = "🎭 讓我們設定你的 AI 朋友個性！"
	defaultHintText = "如果不確定如何設定，請輸入 **0**，我們會幫你設定為『預設值』！"
	doneText        = "✅ AI 個性設定完成！你可以開始聊天啦 🎉"

	notNumberText  = "請輸入一個數字！"
	outOfRangeText = "請輸入 1 到 7 之間的數字，或輸入 0 選擇『全部預設』！"
)

// ErrAborted is returned when input ends before every trait is answered.
var ErrAborted = errors.New("setup aborted before all traits were set")

// Request carries the flags given on the command line. Nil fields keep
// whatever the stored record has.
type Request struct {
	UserID domain.UserID
	Paid   *bool
	Gender *domain.Gender
}

type Wizard struct {
	store domain.SessionStore
	in    *bufio.Scanner
	out   io.Writer
}

func NewWizard(store domain.SessionStore, in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		store: store,
		in:    bufio.NewScanner(in),
		out:   out,
	}
}

// Run asks for every active trait, re-prompting on bad input, then saves
// the profile. Display name and history are left as stored.
func (w *Wizard) Run(ctx context.Context, req Request) (*domain.UserSession, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", req.UserID)

	session, err := w.store.Load(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	profile := session.Profile.Clone()
	if req.Paid != nil {
		profile.IsPaidUser = *req.Paid
	}
	if req.Gender != nil {
		profile.AIGender = *req.Gender
	}

	w.println(introText)
	w.println(defaultHintText)

	for _, t := range profile.ActiveTraits() {
		profile, err = w.ask(profile, t)
		if err != nil {
			return nil, err
		}
	}

	session.Profile = profile
	if err := w.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	log.Infow("personality configured", "paid", profile.IsPaidUser, "ai_gender", profile.AIGender)
	w.println(doneText)
	return session, nil
}

func (w *Wizard) ask(p domain.PersonalityProfile, t domain.Trait) (domain.PersonalityProfile, error) {
	label := t.Label()
	if t.Tier() == domain.TierPaid {
		label += "（付費功能）"
	}

	for {
		fmt.Fprintf(w.out, "請設定 %s（1 = 最低, 7 = 最高，輸入 0 選擇『全部預設』）：", label)

		if !w.in.Scan() {
			if err := w.in.Err(); err != nil {
				return p, fmt.Errorf("read answer: %w", err)
			}
			w.println("")
			return p, ErrAborted
		}

		raw, err := strconv.Atoi(strings.TrimSpace(w.in.Text()))
		if err != nil {
			w.println(notNumberText)
			continue
		}

		next, err := domain.ApplySetting(p, t, raw)
		switch {
		case err == nil:
			return next, nil
		case errors.Is(err, domain.ErrInvalidSettingValue):
			w.println(outOfRangeText)
		default:
			return p, err
		}
	}
}

func (w *Wizard) println(s string) {
	fmt.Fprintln(w.out, s)
}
