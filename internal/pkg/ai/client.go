package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gl11tchy/test-project-2/internal/pkg/env"
)

const (
	defaultModel = "claude-sonnet-4-20250514"
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	maxTokens    = 4096
)

// Message is one turn of a chat conversation. It lives only for the duration
// of a single request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to the Anthropic Messages API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewClientFromEnv creates a client configured from the environment.
// ANTHROPIC_BASE_URL overrides the API endpoint for staging and tests.
func NewClientFromEnv() *Client {
	return &Client{
		apiKey:  env.GetEnv("ANTHROPIC_API_KEY", ""),
		model:   env.GetEnv("ANTHROPIC_MODEL", defaultModel),
		baseURL: env.GetEnv("ANTHROPIC_BASE_URL", apiURL),
		// No client timeout: responses stream for as long as the model
		// generates. The request context bounds the connection instead.
		http: &http.Client{},
	}
}

// Model returns the model identifier recorded with usage events.
func (c *Client) Model() string {
	return c.model
}

type streamRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Stream    bool      `json:"stream"`
	Messages  []Message `json:"messages"`
}

// Stream opens a streaming completion for the conversation and returns the
// upstream body. The caller owns the ReadCloser and must close it on every
// exit path, including cancellation.
func (c *Client) Stream(ctx context.Context, messages []Message) (io.ReadCloser, error) {
	if c.apiKey == "" {
		return nil, errors.New("Anthropic API key not configured")
	}

	body, err := json.Marshal(streamRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Stream:    true,
		Messages:  messages,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("Anthropic API error: %d %s", resp.StatusCode, msg)
	}
	return resp.Body, nil
}
