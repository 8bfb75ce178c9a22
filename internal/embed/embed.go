// Package embed calls an OpenAI-compatible embeddings endpoint.
package embed

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

// ErrInputTooLarge reports that the service rejected the input for its
// size. Callers retry at a smaller truncation tier; any other error is
// not size-related and retrying with less text will not help.
var ErrInputTooLarge = errors.New("embedding input too large")

// Client is a minimal embeddings client for OpenAI-compatible endpoints.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewClient creates an embeddings client. baseURL points at the
// /embeddings endpoint of an OpenAI-compatible service.
func NewClient(baseURL, model, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Embed returns the embedding vector for text. Size rejections are
// surfaced as ErrInputTooLarge so the caller can truncate and retry.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("embedding API key not set")
	}

	body, err := json.Marshal(embeddingRequest{Input: text, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			if isSizeError(resp.StatusCode, apiErr.Error.Message, apiErr.Error.Code) {
				return nil, fmt.Errorf("%w: %s", ErrInputTooLarge, apiErr.Error.Message)
			}
			return nil, fmt.Errorf("embedding API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("embedding API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return parsed.Data[0].Embedding, nil
}

// isSizeError recognizes the service's "input too large" rejections.
// OpenAI-compatible services phrase these as context-length errors on 400.
func isSizeError(status int, message, code string) bool {
	if status != http.StatusBadRequest {
		return false
	}
	if code == "context_length_exceeded" {
		return true
	}
	lower := strings.ToLower(message)
	return strings.Contains(lower, "maximum context length") ||
		strings.Contains(lower, "too long") ||
		strings.Contains(lower, "too large")
}
