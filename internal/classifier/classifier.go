// Package classifier talks to an OpenAI-compatible chat-completions endpoint
// for the two services the triage engine consults: yes/no classification of
// email text and summarization. An unconfigured client is a valid state;
// rules that need it simply never match.
package classifier

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

// ErrNotConfigured is returned when a call is made without an endpoint and
// API key. Callers are expected to check Configured first; the error exists
// so a missed check fails loudly rather than silently matching.
var ErrNotConfigured = errors.New("classifier not configured")

const defaultTimeout = 30 * time.Second

const yesNoInstruction = "Answer the question about the following text with only the single word \"yes\" or \"no\"."

const summarizeInstruction = "Summarize the following email in two or three sentences."

// Config holds the endpoint settings, typically loaded from the [ai] config
// section.
type Config struct {
	Endpoint string // full chat-completions URL
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Client is a thin HTTP client over the configured endpoint.
type Client struct {
	cfg   Config
	httpc *http.Client
}

// New creates a classifier client. Endpoint and APIKey may be empty, in
// which case Configured reports false and all calls return ErrNotConfigured.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:   cfg,
		httpc: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the client has an endpoint and key to call.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.Endpoint != "" && c.cfg.APIKey != ""
}

// Classify asks the yes/no question about the given text and returns the
// normalized answer. Exactly "yes" signals a match; any other answer,
// including malformed output, is a non-match and not an error.
func (c *Client) Classify(ctx context.Context, text, question string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nQuestion: %s\n\nText:\n%s", yesNoInstruction, question, text)
	answer, err := c.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return normalizeAnswer(answer), nil
}

// Summarize returns a short summary of the given text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf("%s\n\n%s", summarizeInstruction, text)
	summary, err := c.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

// complete performs a single chat-completions request and returns the first
// choice's content.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call classifier endpoint: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read classifier response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("classifier endpoint returned %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("classifier endpoint returned %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode classifier response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("classifier response contained no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// normalizeAnswer lower-cases, trims whitespace and strips trailing
// punctuation so "Yes." and "YES" both compare equal to "yes".
func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimRight(s, ".,!?:;\"'")
}

// --- chat-completions wire types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
