package prompt

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/myvfriend/internal/domain"
)

// DefaultDisplayName is used when the user never declared a name.
const DefaultDisplayName = "friend"

const header = "你是一個 AI 朋友，請根據以下個性設定來回應使用者："

// Compile turns a personality, the user's name, the recent history window
// and the new message into one generation request. It is pure: the same
// inputs always give the same string.
func Compile(profile domain.PersonalityProfile, displayName string, window []domain.Turn, userText string) string {
	var b strings.Builder

	b.WriteString(header)
	b.WriteString("\n")
	for _, t := range profile.ActiveTraits() {
		fmt.Fprintf(&b, "- %s: %d/7", t.Label(), profile.Value(t))
		if hint := t.Hint(); hint != "" {
			fmt.Fprintf(&b, "（%s）", hint)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "- AI 性別: %s\n", profile.AIGender.Label())

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = DefaultDisplayName
	}
	fmt.Fprintf(&b, "使用者的名字: %s\n", name)

	if len(window) > 0 {
		b.WriteString("\n對話紀錄:\n")
		for _, turn := range window {
			b.WriteString("user: ")
			b.WriteString(turn.UserText)
			b.WriteString("\n")
			b.WriteString("assistant: ")
			b.WriteString(turn.AIText)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n使用者說：")
	b.WriteString(userText)
	return b.String()
}

// CompileSession is Compile over a session's current state.
func CompileSession(s *domain.UserSession, userText string) string {
	return Compile(s.Profile, s.DisplayName, s.Window(), userText)
}
