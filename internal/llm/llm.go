// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm calls an OpenAI-compatible chat-completions API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-engine/internal/httputil"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// Request is one single-turn completion request.
type Request struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Client sends prompts to a chat-completions endpoint.
type Client struct {
	Endpoint   string
	Model      string
	APIKey     string
	UserAgent  string
	MaxRetries int
	Client     *http.Client
}

// New returns a client configured from cfg.
func New(cfg types.GenerationConfig) *Client {
	return &Client{
		Endpoint:   cfg.Endpoint,
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		Client:     &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
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

// Complete sends req as a single user message and returns the trimmed
// reply. HTTP 429 responses are retried with backoff.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if c.APIKey == "" || c.Endpoint == "" || c.Model == "" {
		return "", fmt.Errorf("chat client misconfigured: endpoint, model, and API key are required")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, c.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling chat API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}

	text := strings.TrimSpace(cr.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat API returned empty content")
	}
	return text, nil
}
