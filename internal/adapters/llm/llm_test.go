package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/myvfriend/internal/adapters/llm"
)

func TestMockEchoesUserLine(t *testing.T) {
	m := llm.NewMockLLM()

	got, err := m.GenerateReply(context.Background(), "你是一個 AI 朋友\n\n使用者說：今天好累")
	require.NoError(t, err)
	assert.Equal(t, "我聽到你說「今天好累」，多跟我說一點吧！", got)
}

func TestMockHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := llm.NewMockLLM().GenerateReply(ctx, "使用者說：hi")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGeminiClientNeedsCredentials(t *testing.T) {
	_, err := llm.NewGeminiClient(context.Background(), llm.GeminiOptions{})
	assert.Error(t, err)
}

func geminiServer(t *testing.T, text string, gotPrompt *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		assert.NoError(t, json.Unmarshal(body, &req))
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			*gotPrompt = req.Contents[0].Parts[0].Text
		}

		resp := map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": []any{map[string]any{"text": text}},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGeminiGenerateReply(t *testing.T) {
	var prompt string
	srv := geminiServer(t, "嗨！", &prompt)
	defer srv.Close()

	c, err := llm.NewGeminiClient(context.Background(), llm.GeminiOptions{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})
	require.NoError(t, err)

	got, err := c.GenerateReply(context.Background(), "使用者說：你好")
	require.NoError(t, err)
	assert.Equal(t, "嗨！", got)
	assert.Equal(t, "使用者說：你好", prompt)
}

func TestGeminiEmptyTextIsError(t *testing.T) {
	var prompt string
	srv := geminiServer(t, "", &prompt)
	defer srv.Close()

	c, err := llm.NewGeminiClient(context.Background(), llm.GeminiOptions{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})
	require.NoError(t, err)

	_, err = c.GenerateReply(context.Background(), "使用者說：你好")
	assert.Error(t, err)
}

func TestGeminiServerErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := llm.NewGeminiClient(context.Background(), llm.GeminiOptions{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})
	require.NoError(t, err)

	_, err = c.GenerateReply(context.Background(), "使用者說：你好")
	assert.Error(t, err)
}
