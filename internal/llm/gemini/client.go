package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"resume-builder/internal/prompt"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-2.0-flash"
	DefaultTimeout  = 120 * time.Second

	maxErrorBody = 4096
)

// Client implements llm.Client against the Gemini generateContent REST endpoint.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	Endpoint   string
	Model      string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewClient constructs a Gemini client. A missing API key is not rejected here; the
// provider reports it on the first call.
func NewClient(opts Options) *Client {
	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint:   endpoint,
		model:      model,
		apiKey:     opts.APIKey,
		httpClient: httpClient,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

const (
	textPath         = "candidates.0.content.parts.0.text"
	errorMessagePath = "error.message"
	errorStatusPath  = "error.status"
)

// Generate sends the prompt parts in order as a single content entry.
func (c *Client) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	parts := make([]part, 0, len(p.Parts))
	for _, text := range p.Parts {
		parts = append(parts, part{Text: text})
	}
	payload, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("gemini request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini http status %d: %s", resp.StatusCode, truncate(body))
	}

	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("gemini response parse: invalid JSON")
	}
	if msg := gjson.GetBytes(body, errorMessagePath); msg.Exists() {
		return "", fmt.Errorf("gemini error: %s (%s)", msg.String(), gjson.GetBytes(body, errorStatusPath).String())
	}
	return firstText(body), nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

func (c *Client) url() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
}

// firstText reads candidates[0].content.parts[0].text; anything else counts as no text.
func firstText(body []byte) string {
	res := gjson.GetBytes(body, textPath)
	if res.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(res.String())
}

func truncate(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		return text[:maxErrorBody]
	}
	return text
}
