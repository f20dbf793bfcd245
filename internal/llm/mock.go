package llm

import (
	"context"
	"strings"
)

// Mock is a deterministic offline provider. It recognizes each prompt kind
// by its distinctive instruction text and returns a canned response, which
// is enough to run the demos and the service tests without a real model.
type Mock struct{}

// NewMock creates the offline provider.
func NewMock() *Mock { return &Mock{} }

// Generate implements Client.
func (m *Mock) Generate(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "Classify the user's statement"):
		if strings.Contains(strings.ToLower(prompt), "grandparent") {
			return "RULE", nil
		}
		return "FACT", nil
	case strings.Contains(prompt, "JSON array of facts"):
		return `[{"functor":"mock_fact","args":["mock"]}]`, nil
	case strings.Contains(prompt, "natural language definitions into logic rules"):
		return `{"head":{"functor":"mock_rule","args":["X"]},"body":[{"functor":"mock_fact","args":["X"]}]}`, nil
	case strings.Contains(prompt, "single logic query goal"):
		if strings.Contains(prompt, "george") || strings.Contains(prompt, "George") {
			return "grandparent(Grandparent, george)", nil
		}
		return "mock_fact(X)", nil
	case strings.Contains(prompt, "conversational natural language answer"):
		return "This is a canned answer from the offline provider.", nil
	case strings.Contains(prompt, "Answer the following question directly"):
		return "I can't verify this against the knowledge base, but here is a best-effort answer from the offline provider.", nil
	}
	return "placeholder(mock).", nil
}

// Name implements Client.
func (m *Mock) Name() string { return "mock" }

// Close implements Client.
func (m *Mock) Close() error { return nil }
