package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	defaultOllamaHost  = "http://localhost:11434"
	defaultOllamaModel = "llama3.1"
)

// Ollama talks to a local Ollama server.
type Ollama struct {
	client  *api.Client
	model   string
	timeout time.Duration
}

// NewOllama creates a client for the Ollama server at baseURL.
func NewOllama(baseURL, model string, timeout time.Duration) (*Ollama, error) {
	if baseURL == "" {
		baseURL = defaultOllamaHost
	}
	if model == "" {
		model = defaultOllamaModel
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", baseURL, err)
	}
	return &Ollama{
		client:  api.NewClient(u, &http.Client{}),
		model:   model,
		timeout: timeout,
	}, nil
}

// Generate implements Client.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withDeadline(ctx, o.timeout)
	defer cancel()

	stream := false
	req := &api.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
	}
	var sb strings.Builder
	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}
	return sb.String(), nil
}

// Name implements Client.
func (o *Ollama) Name() string {
	return fmt.Sprintf("ollama:%s", o.model)
}

// Close implements Client.
func (o *Ollama) Close() error { return nil }
