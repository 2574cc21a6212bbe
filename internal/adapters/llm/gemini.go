package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// GeminiOptions selects the backend. An APIKey means the Gemini API;
// otherwise Project and Location select Vertex AI.
type GeminiOptions struct {
	APIKey   string
	Project  string
	Location string
	Model    string
	// BaseURL overrides the service endpoint. Tests point it at a local server.
	BaseURL string
}

type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates an LLMClient backed by Gemini.
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{}
	switch {
	case opts.APIKey != "":
		cfg.Backend = genai.BackendGeminiAPI
		cfg.APIKey = opts.APIKey
	case opts.Project != "" && opts.Location != "":
		cfg.Backend = genai.BackendVertexAI
		cfg.Project = opts.Project
		cfg.Location = opts.Location
	default:
		return nil, fmt.Errorf("gemini: an API key or a GCP project and location must be set")
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// GenerateReply implements domain.LLMClient. The prompt already carries the
// personality, the user's name and the recent history, so it is sent as a
// single user turn.
func (g *GeminiClient) GenerateReply(ctx context.Context, prompt string) (string, error) {
	temp := float32(0.9)
	topP := float32(0.95)

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: int32(1024),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	// Only the text; safety blocks and empty candidates come back as "".
	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}

	return text, nil
}
