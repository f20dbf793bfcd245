package llm

import (
	"context"
	"fmt"
	"strings"
)

// New builds a client for the configured provider. The empty provider and
// "mock" both select the offline provider.
func New(ctx context.Context, opts Options) (Client, error) {
	switch strings.ToLower(opts.Provider) {
	case "", "mock":
		return NewMock(), nil
	case "gemini":
		return NewGemini(ctx, opts.APIKey, opts.Model, opts.Timeout)
	case "ollama":
		return NewOllama(opts.BaseURL, opts.Model, opts.Timeout)
	case "openai":
		return NewOpenAI(opts.BaseURL, opts.APIKey, opts.Model, opts.Timeout)
	}
	return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
}
