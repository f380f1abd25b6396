package llm

import (
	"context"
	"errors"

	"resume-builder/internal/prompt"
)

// Client abstracts text-generation providers.
//
// Generate returns the first candidate's text, trimmed. A response without that text is
// reported as an empty string and a nil error; transport and HTTP failures are errors.
type Client interface {
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

// ErrNotConfigured is returned by the disabled client.
var ErrNotConfigured = errors.New("generation provider not configured")

// DisabledClient is used when LLM_PROVIDER=none.
type DisabledClient struct{}

// Generate returns ErrNotConfigured.
func (DisabledClient) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	_ = ctx
	_ = p
	return "", ErrNotConfigured
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, p prompt.Prompt) (string, error)

// Generate calls f.
func (f ClientFunc) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	return f(ctx, p)
}
