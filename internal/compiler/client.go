// Package compiler talks to the remote LaTeX-to-PDF compilation service.
package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const compilePath = "/compile"

// ErrCompileFailed marks a non-2xx response from the compiler.
var ErrCompileFailed = errors.New("latex compilation failed")

// ErrNotConfigured is returned when no compiler URL is set.
var ErrNotConfigured = errors.New("compiler url not configured")

// CompileError carries the compiler's response for diagnostics.
type CompileError struct {
	StatusCode int
	Body       string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiler http status %d: %s", e.StatusCode, e.Body)
}

func (e *CompileError) Unwrap() error { return ErrCompileFailed }

// Client posts LaTeX source to {baseURL}/compile and returns the PDF bytes.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client. A zero timeout leaves the request unbounded apart from ctx.
func NewClient(baseURL string, timeout time.Duration) *Client {
	httpClient := &http.Client{}
	if timeout > 0 {
		httpClient.Timeout = timeout
	}
	return NewClientWithHTTP(baseURL, httpClient)
}

// NewClientWithHTTP builds a client around an existing *http.Client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
	}
}

type compileRequest struct {
	Latex string `json:"latex"`
}

// Compile sends latex as {"latex": ...}. The whole response body is read before returning.
func (c *Client) Compile(ctx context.Context, latex string) ([]byte, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	payload, err := json.Marshal(compileRequest{Latex: latex})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+compilePath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compiler request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("compiler response read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &CompileError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
