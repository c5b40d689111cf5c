package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel is the OpenAI model used for answering questions
	DefaultModel = "gpt-4o"
	// DefaultMaxTokens bounds a single completion
	DefaultMaxTokens = 1000
)

var (
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
	// ErrNoChoices is returned when a completion comes back empty
	ErrNoChoices = errors.New("no completion choices returned")
)

// ChatAPI defines the interface for chat completion calls
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client wraps the OpenAI API client
type Client struct {
	api       ChatAPI
	model     string
	maxTokens int
}

type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Client{
		api:       openai.NewClient(cfg.APIKey),
		model:     model,
		maxTokens: maxTokens,
	}
}

// NewClientWithAPI creates a new Client around a ChatAPI implementation (for testing)
func NewClientWithAPI(api ChatAPI, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{api: api, model: model, maxTokens: DefaultMaxTokens}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Chat sends the conversation to the model and returns the assistant
// message, which may carry tool calls instead of content.
func (c *Client) Chat(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
		// A literal 0 is dropped by the request's omitempty; the library
		// treats this value as an explicit zero temperature.
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return openai.ChatCompletionMessage{}, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return openai.ChatCompletionMessage{}, ErrNoChoices
	}

	return resp.Choices[0].Message, nil
}
