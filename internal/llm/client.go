// Package llm provides a thin client for a locally running
// OpenAI-compatible language-model service (e.g. Ollama), used to refine
// prompt text and suggest titles.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// DefaultBaseURL targets a local Ollama instance's OpenAI-compatible API.
	DefaultBaseURL = "http://localhost:11434/v1"
	DefaultModel   = "llama3.1"
	// DefaultTimeout bounds every request to the local service.
	DefaultTimeout = 8 * time.Second

	refineSystemPrompt = "You are a prompt engineer. Rewrite the user's prompt to be clearer, " +
		"more specific, and better structured. Preserve the original intent and language. " +
		"Return only the rewritten prompt, without commentary."
	titleSystemPrompt = "Suggest a short title (at most six words) for the following prompt. " +
		"Return only the title, without quotes or commentary."
)

// Config holds configuration for the LLM client.
type Config struct {
	BaseURL    string
	APIKey     string // local services usually accept any value
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client // optional (tests)
}

// Client calls the language-model service. Failures are returned to the
// caller as-is; the client never retries on its own.
type Client struct {
	model  string
	client openai.Client
}

// NewClient creates a client for the configured endpoint.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.APIKey == "" {
		cfg.APIKey = "local"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &Client{model: cfg.Model, client: client}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Refine asks the service to rewrite prompt text for clarity.
func (c *Client) Refine(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, refineSystemPrompt, text)
}

// SuggestTitle asks the service for a short title describing the text.
func (c *Client) SuggestTitle(ctx context.Context, text string) (string, error) {
	title, err := c.complete(ctx, titleSystemPrompt, text)
	if err != nil {
		return "", err
	}
	return strings.Trim(title, `"'`), nil
}

// ListModels returns the model ids available on the service. Used for
// service discovery and health checks.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("llm: list models: %w", mapAPIError(err))
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (c *Client) complete(ctx context.Context, system, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("llm: text is required")
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: completion: %w", mapAPIError(err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response from model %s", c.model)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// mapAPIError unwraps SDK errors into messages fit for surfacing to the
// user.
func mapAPIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("service error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("service error (status %d)", apiErr.StatusCode)
	}
	return err
}
