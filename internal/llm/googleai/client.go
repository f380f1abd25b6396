// Package googleai generates documents through the Google AI Go SDK.
package googleai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"resume-builder/internal/prompt"
)

// Client implements llm.Client with github.com/google/generative-ai-go.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient dials the Gemini API with an API key.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the genai provider")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Client{client: client, model: client.GenerativeModel(model)}, nil
}

// Generate sends each prompt part as a separate text part.
func (c *Client) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	parts := make([]genai.Part, 0, len(p.Parts))
	for _, text := range p.Parts {
		parts = append(parts, genai.Text(text))
	}
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("genai generate: %w", err)
	}
	return firstText(resp), nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return ""
	}
	text, ok := cand.Content.Parts[0].(genai.Text)
	if !ok {
		return ""
	}
	return strings.TrimSpace(string(text))
}
