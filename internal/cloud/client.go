// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud implements the client for an OpenAI-compatible chat
// completions service with server-sent event streaming.
package cloud

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds establishing the response; the streaming body
	// itself is controlled by the request context.
	DefaultTimeout = 30 * time.Second

	// chatCompletionsPath is the endpoint path for chat requests.
	chatCompletionsPath = "/chat/completions"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConfigured indicates the API credential is not set.
	ErrNotConfigured = errors.New("API credential not configured")
)

// APIError represents an error reported by the remote service.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.Status, e.Message)
}

// apiErrorResponse is the error body shape returned with non-2xx statuses.
type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatMessage is a single role/content pair in the outbound payload.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the outbound chat completions payload.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client communicates with the chat completions service.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client with the given API credential. The client is
// still usable with an empty credential, but Stream fails with
// ErrNotConfigured.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: "https://openrouter.ai/api/v1",
		model:   "openrouter/auto",
		// No overall timeout: streams stay open as long as the server
		// sends. Header timeout catches dead connections.
		// SECURITY: TLS 1.2 minimum.
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: DefaultTimeout,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
}

// WithBaseURL sets a custom base URL for the service.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithModel sets the model identifier sent with every request.
func (c *Client) WithModel(model string) *Client {
	c.model = model
	return c
}

// WithTimeout sets the response-header timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if t, ok := c.httpClient.Transport.(*http.Transport); ok {
		t.ResponseHeaderTimeout = timeout
	}
	return c
}

// IsConfigured returns true if the client has an API credential.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// =============================================================================
// STREAMING
// =============================================================================

// Stream performs a streaming chat completion request. onDelta is called
// once per content delta, in the order deltas arrive. Stream returns when
// the transport signals completion, the context is cancelled, or an error
// occurs.
func (c *Client) Stream(ctx context.Context, messages []ChatMessage, onDelta func(string)) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqBody := ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   true,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+chatCompletionsPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return handleErrorResponse(resp.StatusCode, body)
	}

	return c.processStream(ctx, resp.Body, onDelta)
}

// processStream feeds raw body chunks through the decoder until the
// transport signals end-of-stream. Any trailing fragment that was never
// newline-terminated is discarded, not parsed.
func (c *Client) processStream(ctx context.Context, body io.Reader, onDelta func(string)) error {
	dec := NewDecoder()
	buf := make([]byte, 4096)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			for _, delta := range dec.Feed(buf[:n]) {
				onDelta(delta)
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("stream read failed: %w", err)
		}
	}
}

// handleErrorResponse turns a non-2xx response into a typed error, using
// the server-provided message when the body carries one.
func handleErrorResponse(status int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return &APIError{Status: status, Message: apiErr.Error.Message}
	}
	return &APIError{Status: status, Message: fmt.Sprintf("request failed with status %d", status)}
}
