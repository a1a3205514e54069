package embed

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

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// geminiBatchSize stays under the API's batch ceiling.
	geminiBatchSize = 50

	taskTypeQuery    = "RETRIEVAL_QUERY"
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
)

// GeminiConfig configures the Gemini REST embedder.
type GeminiConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// GeminiEmbedder calls the Gemini embedContent / batchEmbedContents REST
// endpoints. Rate-limit and server errors are retried through the shared
// policy; every returned vector is checked against the configured
// dimensionality.
type GeminiEmbedder struct {
	cfg    GeminiConfig
	client *http.Client
	policy retry.Policy
}

// NewGeminiEmbedder builds an embedder from config and the shared retry
// policy.
func NewGeminiEmbedder(cfg GeminiConfig, policy retry.Policy) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini model is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("invalid embedding dimensions %d", cfg.Dimensions)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if policy.Retryable == nil {
		policy.Retryable = IsRetryableHTTPError
	}

	return &GeminiEmbedder{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		policy: policy,
	}, nil
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbedRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"taskType"`
}

type geminiEmbedding struct {
	Values []float32 `json:"values"`
}

type geminiEmbedResponse struct {
	Embedding geminiEmbedding `json:"embedding"`
}

type geminiBatchRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

type geminiBatchResponse struct {
	Embeddings []geminiEmbedding `json:"embeddings"`
}

// httpStatusError carries the response status for the retryable predicate.
type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

// IsRetryableHTTPError reports whether an outbound call failed in a way
// worth retrying: rate limiting, server-side errors, or transport errors.
func IsRetryableHTTPError(err error) bool {
	var se *httpStatusError
	if errors.As(err, &se) {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	// Transport-level failures (timeouts, resets) have no status.
	return true
}

// Embed returns one vector for text, using the query or document task type.
func (g *GeminiEmbedder) Embed(ctx context.Context, text string, isQuery bool) ([]float32, error) {
	taskType := taskTypeDocument
	if isQuery {
		taskType = taskTypeQuery
	}

	reqBody := geminiEmbedRequest{
		Model:    "models/" + g.cfg.Model,
		Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
		TaskType: taskType,
	}
	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", g.cfg.BaseURL, g.cfg.Model, g.cfg.APIKey)

	var resp geminiEmbedResponse
	if err := g.post(ctx, url, reqBody, &resp); err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}

	if err := g.checkDimensions(resp.Embedding.Values); err != nil {
		return nil, err
	}
	return resp.Embedding.Values, nil
}

// EmbedBatch embeds texts in document role, in batches of 50. The result
// is aligned by index; any batch returning a different count aborts the
// whole call with ErrCountMismatch.
func (g *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents?key=%s", g.cfg.BaseURL, g.cfg.Model, g.cfg.APIKey)

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += geminiBatchSize {
		end := start + geminiBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		reqs := make([]geminiEmbedRequest, len(batch))
		for i, text := range batch {
			reqs[i] = geminiEmbedRequest{
				Model:    "models/" + g.cfg.Model,
				Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
				TaskType: taskTypeDocument,
			}
		}

		var resp geminiBatchResponse
		if err := g.post(ctx, url, geminiBatchRequest{Requests: reqs}, &resp); err != nil {
			return nil, fmt.Errorf("embed batch at offset %d: %w", start, err)
		}

		if len(resp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("batch at offset %d returned %d embeddings for %d texts: %w",
				start, len(resp.Embeddings), len(batch), ErrCountMismatch)
		}
		for _, e := range resp.Embeddings {
			if err := g.checkDimensions(e.Values); err != nil {
				return nil, err
			}
			out = append(out, e.Values)
		}
	}
	return out, nil
}

// Dimensions returns the configured vector length.
func (g *GeminiEmbedder) Dimensions() int {
	return g.cfg.Dimensions
}

// ModelName returns the backing model identifier.
func (g *GeminiEmbedder) ModelName() string {
	return g.cfg.Model
}

// Available probes the provider with a single short embed call.
func (g *GeminiEmbedder) Available(ctx context.Context) bool {
	_, err := g.Embed(ctx, "ping", true)
	return err == nil
}

// Close releases idle connections.
func (g *GeminiEmbedder) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

func (g *GeminiEmbedder) checkDimensions(vec []float32) error {
	if len(vec) != g.cfg.Dimensions {
		return fmt.Errorf("provider returned %d dimensions, configured %d: %w",
			len(vec), g.cfg.Dimensions, ErrDimensionMismatch)
	}
	return nil
}

func (g *GeminiEmbedder) post(ctx context.Context, url string, body, into any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	return g.policy.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.client.Do(req)
		if err != nil {
			return fmt.Errorf("send request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return &httpStatusError{status: resp.StatusCode, body: truncateForLog(data)}
		}

		if err := json.Unmarshal(data, into); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

func truncateForLog(data []byte) string {
	const max = 256
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
