// Package vertex generates documents through Gemini models hosted on Vertex AI.
package vertex

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"resume-builder/internal/prompt"
)

const defaultLocation = "us-central1"

// Client implements llm.Client with cloud.google.com/go/vertexai.
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	projectID string
	location  string
}

// NewClient creates a Vertex AI client using application default credentials.
func NewClient(ctx context.Context, projectID, location, model string) (*Client, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the vertex provider")
	}
	if strings.TrimSpace(location) == "" {
		location = defaultLocation
	}
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}
	return &Client{
		client:    client,
		model:     client.GenerativeModel(model),
		projectID: projectID,
		location:  location,
	}, nil
}

// Generate sends each prompt part as a separate text part.
func (c *Client) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	parts := make([]genai.Part, 0, len(p.Parts))
	for _, text := range p.Parts {
		parts = append(parts, genai.Text(text))
	}
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return firstText(resp), nil
}

// Close closes the Vertex AI client.
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
	if text, ok := cand.Content.Parts[0].(genai.Text); ok {
		return strings.TrimSpace(string(text))
	}
	return ""
}
