// Package llm provides the generative-text capability used for query
// translation and answer synthesis. It speaks the OpenAI chat-completions
// protocol, which also covers self-hosted OpenAI-compatible servers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/guestgraph/guestgraph/helper"
	"github.com/guestgraph/guestgraph/pkg/retry"
)

// Generator turns a prompt into generated text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerateFunc adapts a plain function to the Generator interface
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

func (f GenerateFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Config configures the chat-completions client
type Config struct {
	// BaseURL of the OpenAI-compatible endpoint. Examples:
	//   - "https://api.openai.com/v1" (OpenAI cloud)
	//   - "http://localhost:11434/v1" (Ollama)
	//   - "http://localhost:8080/v1" (LocalAI)
	BaseURL string `yaml:"base_url"`
	// Model is the chat model identifier
	Model string `yaml:"model"`
	// APIKey for authentication, optional for local services
	APIKey string `yaml:"api_key"`
	// Timeout for one HTTP request (default 60s)
	Timeout time.Duration `yaml:"timeout"`
	// Retry configures backoff for rate-limit and transport errors
	Retry retry.Config `yaml:"-"`
	// Temperature for generation (default 0, deterministic-ish queries)
	Temperature float32 `yaml:"temperature"`
}

// Client is a Generator backed by an OpenAI-compatible chat endpoint
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	retryCfg    retry.Config
	log         *slog.Logger
}

// NewClient creates a chat-completions client
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Model == "" {
		return nil, helper.NewError("create llm client", fmt.Errorf("model is required"))
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "dummy-key" // Local services don't need a real key
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	retryCfg := cfg.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.DefaultConfig()
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		retryCfg:    retryCfg,
		log:         logger,
	}, nil
}

// Generate sends the prompt as a single user message and returns the first
// choice. Rate-limit and transport errors are retried with bounded backoff;
// other API errors fail immediately.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var content string

	err := retry.Do(ctx, c.retryCfg, func() error {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: c.temperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			if !isRetryable(err) {
				return retry.NonRetryable(err)
			}
			c.log.Warn("llm call failed, will retry", slog.String("error", err.Error()))
			return err
		}
		if len(resp.Choices) == 0 {
			return retry.NonRetryable(fmt.Errorf("empty completion response"))
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", helper.NewError("generate completion", err)
	}

	return content, nil
}

// isRetryable reports whether the call should be retried: rate limits,
// server errors, and plain transport failures are; other API errors
// (auth, bad request) are not.
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	// Transport-level failure without an HTTP status
	return true
}
