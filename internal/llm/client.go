// Package llm provides the language model clients behind translation and
// summarization.
package llm

import (
	"context"
	"time"
)

// defaultTimeout bounds a single generation when the caller's context
// carries no deadline.
const defaultTimeout = 120 * time.Second

// Client generates a completion for a prompt.
type Client interface {
	// Generate returns the model's full text response for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// Name identifies the provider and model, for logs.
	Name() string
	// Close releases provider resources.
	Close() error
}

// Options selects and configures a provider.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// withDeadline applies the configured timeout when the incoming context
// has no deadline of its own.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
