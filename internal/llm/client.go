// Package llm wraps the OpenAI chat and transcription APIs and owns the
// clinical prompt catalogue.
package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// Request is a single chat completion call.
type Request struct {
	Messages    []Message
	Temperature float32
}

// Client completes chat requests.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type Option func(*clientOptions)

type clientOptions struct {
	baseURL string
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

func newOpenAI(apiKey string, opts []Option) *openai.Client {
	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}

	config := openai.DefaultConfig(apiKey)
	if o.baseURL != "" {
		config.BaseURL = o.baseURL
	}
	return openai.NewClientWithConfig(config)
}

// OpenAIClient implements Client with chat completions.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string, opts ...Option) *OpenAIClient {
	return &OpenAIClient{client: newOpenAI(apiKey, opts), model: model}
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
