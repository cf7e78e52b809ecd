// Package llm talks to an OpenAI-compatible chat completions endpoint.
// Any server speaking that wire format works: OpenAI, Azure OpenAI,
// OpenRouter, vLLM, Ollama, llama.cpp.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"promptctx/chat"
)

// Config configures the client.
type Config struct {
	BaseURL     string // e.g. https://api.openai.com/v1
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration // per-attempt request timeout
	MaxRetries  int           // retries after the first attempt
}

// Client implements chat.Generator against a chat completions endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a chat completions client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	// A negative retry count would skip the attempt loop entirely.
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// wire format

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type wireResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends the conversation and returns the assistant reply.
// Transient failures (429 and 5xx) are retried with backoff; a cancelled
// context is never retried.
func (c *Client) Generate(ctx context.Context, messages []chat.Message) (chat.Message, error) {
	request := wireRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
	}
	for _, m := range messages {
		request.Messages = append(request.Messages, wireMessage{
			Role:    string(m.Role),
			Content: m.Text,
		})
	}

	body, err := json.Marshal(request)
	if err != nil {
		return chat.Message{}, fmt.Errorf("encoding request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			c.logger.Debug("retrying completion request", "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return chat.Message{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		reply, retryable, err := c.doRequest(ctx, body)
		if err == nil {
			return reply, nil
		}
		if ctx.Err() != nil {
			return chat.Message{}, ctx.Err()
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return chat.Message{}, lastErr
}

// doRequest performs one attempt. The second return value reports whether
// the failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, body []byte) (chat.Message, bool, error) {
	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return chat.Message{}, false, fmt.Errorf("building request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return chat.Message{}, true, fmt.Errorf("sending request: %w", err)
	}
	defer httpResponse.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(httpResponse.Body, 10<<20))
	if err != nil {
		return chat.Message{}, true, fmt.Errorf("reading response: %w", err)
	}

	if httpResponse.StatusCode != http.StatusOK {
		retryable := httpResponse.StatusCode == http.StatusTooManyRequests ||
			httpResponse.StatusCode >= 500
		return chat.Message{}, retryable, apiError(httpResponse.StatusCode, responseBody)
	}

	var response wireResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return chat.Message{}, false, fmt.Errorf("decoding response: %w", err)
	}
	if response.Error != nil {
		return chat.Message{}, false, fmt.Errorf("completion error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return chat.Message{}, false, errors.New("completion returned no choices")
	}

	return chat.AssistantMessage(response.Choices[0].Message.Content), false, nil
}

// apiError extracts the API error message when the body carries one.
func apiError(statusCode int, body []byte) error {
	var response wireResponse
	if err := json.Unmarshal(body, &response); err == nil && response.Error != nil {
		return fmt.Errorf("completion failed with status %d: %s", statusCode, response.Error.Message)
	}
	return fmt.Errorf("completion failed with status %d", statusCode)
}
