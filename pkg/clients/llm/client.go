package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultModel     = "gpt-3.5-turbo"
	defaultMaxTokens = 300
	defaultTimeout   = 60 * time.Second
)

// ErrNotConfigured is returned when a client is built without an API key.
var ErrNotConfigured = errors.New("llm: api key is not configured")

// Client defines the interface for chat-style text completion.
type Client interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune a single completion; zero values fall back to the client defaults.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature *float64
}

// Config holds the connection settings of an OpenAI-compatible endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// ChatClient is a resty-backed implementation of Client for the
// chat-completions API.
type ChatClient struct {
	httpClient *resty.Client
	cfg        Config
}

// NewChatClient creates a configured chat-completions client.
func NewChatClient(cfg Config) (*ChatClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &ChatClient{httpClient: client, cfg: cfg}, nil
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends messages and returns the first choice's content, trimmed.
func (c *ChatClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	req := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}

	result := new(chatResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		SetError(apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return "", fmt.Errorf("llm api error: status=%d, message=%s", resp.StatusCode(), apiErr.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", errors.New("llm api returned no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

var _ Client = (*ChatClient)(nil)
