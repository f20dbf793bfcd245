package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini talks to Google's Gemini API through the official SDK.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini client.
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

// Generate implements Client.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withDeadline(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

// Name implements Client.
func (g *Gemini) Name() string {
	return fmt.Sprintf("gemini:%s", g.model)
}

// Close implements Client. The genai SDK client has no Close method, so
// there is nothing to release.
func (g *Gemini) Close() error {
	return nil
}
