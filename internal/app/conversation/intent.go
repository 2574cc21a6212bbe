package conversation

import (
	"strings"
	"unicode/utf8"
)

type Intent string

const (
	IntentNameDeclaration Intent = "name_declaration"
	IntentSettingsReset   Intent = "settings_reset"
	IntentChat            Intent = "chat"
)

// SettingsResetCommand must match the whole message.
const SettingsResetCommand = "調整設定"

// Phrases that open a name declaration, e.g. "我叫小明".
var nameMarkers = []string{
	"我的名字是",
	"我叫",
}

const (
	// A name ends at the first of these.
	nameStopRunes = " \t，,。.！!？?～~、；;：:"

	// Remainders starting with these are sentences, not names
	// ("我叫你別說了", "我叫了外賣").
	nonNameLeadRunes = "你妳您他她它牠祂了過"
	maxNameRunes     = 10
)

// Classify picks exactly one intent for text, testing name declaration,
// then settings reset, then falling back to chat. For a name declaration
// it also returns the declared name.
func Classify(text string) (Intent, string) {
	text = strings.TrimSpace(text)

	for _, marker := range nameMarkers {
		rest, ok := strings.CutPrefix(text, marker)
		if !ok {
			continue
		}
		if name, ok := extractName(rest); ok {
			return IntentNameDeclaration, name
		}
	}

	if text == SettingsResetCommand {
		return IntentSettingsReset, ""
	}

	return IntentChat, ""
}

func extractName(rest string) (string, bool) {
	rest = strings.TrimSpace(rest)
	if i := strings.IndexAny(rest, nameStopRunes); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" || utf8.RuneCountInString(rest) > maxNameRunes {
		return "", false
	}
	first, _ := utf8.DecodeRuneInString(rest)
	if strings.ContainsRune(nonNameLeadRunes, first) {
		return "", false
	}
	return rest, true
}
