package llm

import (
	"context"
	"fmt"
	"strings"
)

// userLineMarker starts the last line of every compiled prompt.
const userLineMarker = "使用者說："

// MockLLM answers without a network call. Used in local mode and tests.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateReply(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	said := prompt
	if i := strings.LastIndex(prompt, userLineMarker); i >= 0 {
		said = prompt[i+len(userLineMarker):]
	}
	return fmt.Sprintf("我聽到你說「%s」，多跟我說一點吧！", strings.TrimSpace(said)), nil
}
