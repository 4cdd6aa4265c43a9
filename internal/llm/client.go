// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package llm talks to an OpenAI-compatible chat-completions endpoint and
// turns its answers into content topics.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/keyscope/internal/metrics"
)

// ErrDisabled is returned by a client without an API key.
var ErrDisabled = errors.New("text generation is disabled")

// Config configures the completion client.
type Config struct {
	BaseURL     string        `koanf:"base_url" json:"base_url"`
	APIKey      string        `koanf:"api_key" json:"-"`
	Model       string        `koanf:"model" json:"model"`
	MaxTokens   int           `koanf:"max_tokens" json:"max_tokens"`
	Temperature float64       `koanf:"temperature" json:"temperature"`
	Timeout     time.Duration `koanf:"timeout" json:"timeout"`
}

// DefaultConfig returns defaults with generation disabled until a key is set.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o",
		MaxTokens:   2000,
		Temperature: 0.7,
		Timeout:     60 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return nil
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required when api_key is set")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required when api_key is set")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client is a chat-completions client.
type Client struct {
	cfg    Config
	http   *resty.Client
	logger zerolog.Logger
}

// NewClient creates a client. Without an API key every call returns ErrDisabled.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid llm config: %w", err)
	}

	c := &Client{
		cfg:    cfg,
		logger: logger.With().Str("component", "llm").Logger(),
	}
	if cfg.APIKey != "" {
		c.http = resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetAuthToken(cfg.APIKey).
			SetTimeout(cfg.Timeout).
			SetJSONMarshaler(json.Marshal).
			SetJSONUnmarshaler(json.Unmarshal)
	}
	return c, nil
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool {
	return c.http != nil
}

// Complete sends messages and returns the first choice's content. A
// maxTokens of zero uses the configured default.
func (c *Client) Complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}

	start := time.Now()
	var out completionResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&completionRequest{
			Model:       c.cfg.Model,
			Messages:    messages,
			MaxTokens:   maxTokens,
			Temperature: c.cfg.Temperature,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		metrics.LLMRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("completion request: %w", err)
	}
	metrics.RecordUpstreamCall("llm", "chat/completions", outcomeFor(resp.StatusCode()), time.Since(start))

	if resp.StatusCode() != http.StatusOK {
		metrics.LLMRequests.WithLabelValues("error").Inc()
		msg := apiErr.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return "", fmt.Errorf("completion status %d: %s", resp.StatusCode(), msg)
	}
	if len(out.Choices) == 0 {
		metrics.LLMRequests.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("completion returned no choices")
	}

	metrics.LLMRequests.WithLabelValues("success").Inc()
	c.logger.Debug().Dur("duration", time.Since(start)).Msg("Completion received")
	return out.Choices[0].Message.Content, nil
}

func outcomeFor(status int) string {
	switch {
	case status == http.StatusOK:
		return "success"
	case status >= http.StatusInternalServerError:
		return "transient"
	default:
		return "other"
	}
}
