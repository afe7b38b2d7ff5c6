package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when a generation request names no model.
const DefaultModel = "gpt-4o-mini"

// Params describes one question-generation call.
type Params struct {
	Model        string
	Topic        string
	Language     string
	NumQuestions int
}

// ErrEmptyCompletion is returned when the provider answers 2xx but the
// completion carries no content.
var ErrEmptyCompletion = errors.New("OpenAI returned empty content")

// ProviderError wraps a failed provider call. Detail carries the raw
// provider error text for diagnostics.
type ProviderError struct {
	Detail string
}

func (e *ProviderError) Error() string {
	return "OpenAI request failed: " + e.Detail
}

// Client calls the OpenAI chat completions API. A custom BaseURL makes it
// work against any OpenAI-compatible endpoint.
type Client struct {
	client *openai.Client
}

func NewClient(apiKey, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{client: openai.NewClientWithConfig(cfg)}
}

// Generate asks the model for a question set and returns the raw completion
// text. JSON-object output mode and low temperature favor schema compliance
// over creative variance. No retries: a provider failure is surfaced
// immediately as *ProviderError.
func (c *Client) Generate(ctx context.Context, p Params) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.Model,
		Temperature: 0.4,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: UserPrompt(p)},
		},
	})
	if err != nil {
		return "", &ProviderError{Detail: err.Error()}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
