// Package llm wraps the text-completion provider behind a one-method
// contract. The engine only ever sends a prompt and reads back text; the
// reranker builds its rubric on top of this.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mizanlegal/mizan/internal/retry"
)

// ErrEmptyResponse is returned when the provider answers with no choices.
var ErrEmptyResponse = errors.New("completion response carried no choices")

// Client is the opaque text-completion capability.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config configures the chat-completions HTTP client.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// HTTPClient talks to an OpenAI-compatible chat-completions endpoint.
// Rate limits and server errors go through the shared retry policy with a
// hard attempt ceiling.
type HTTPClient struct {
	cfg    Config
	client *http.Client
	policy retry.Policy
}

// NewHTTPClient builds the client from config and the shared retry policy.
func NewHTTPClient(cfg Config, policy retry.Policy) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm base url is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if policy.Retryable == nil {
		policy.Retryable = isRetryableStatus
	}

	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		policy: policy,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("completion call returned status %d: %s", e.status, e.body)
}

func isRetryableStatus(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	return true
}

// Complete sends prompt as a single user message and returns the first
// choice's content.
func (c *HTTPClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	url := c.cfg.BaseURL + "/chat/completions"

	return retry.DoWithResult(ctx, c.policy, func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("build completion request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return "", fmt.Errorf("send completion request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return "", fmt.Errorf("read completion response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			snippet := string(data)
			if len(snippet) > 256 {
				snippet = snippet[:256] + "..."
			}
			return "", &statusError{status: resp.StatusCode, body: snippet}
		}

		var parsed chatResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return "", fmt.Errorf("decode completion response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return "", ErrEmptyResponse
		}
		return parsed.Choices[0].Message.Content, nil
	})
}
