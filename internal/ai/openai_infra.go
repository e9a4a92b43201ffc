package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

var ErrEmptyChoices = errors.New("chat completion returned no choices")

type CompletionOptions struct {
	Model            string
	MaxTokens        int
	Temperature      float32
	TopP             float32
	FrequencyPenalty float32
}

func DefaultCompletionOptions(model string, maxTokens int) CompletionOptions {
	return CompletionOptions{
		Model:            model,
		MaxTokens:        maxTokens,
		Temperature:      0.8,
		TopP:             1,
		FrequencyPenalty: 0.3,
	}
}

type OpenAIClient struct {
	client *openai.Client
	opts   CompletionOptions
}

func NewOpenAIClient(apiKey string, opts CompletionOptions) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		opts:   opts,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, s Session) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:            c.opts.Model,
		Messages:         s.Messages(),
		MaxTokens:        c.opts.MaxTokens,
		Temperature:      c.opts.Temperature,
		TopP:             c.opts.TopP,
		FrequencyPenalty: c.opts.FrequencyPenalty,
	}
	if s.Format() == ReplyJSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	return resp.Choices[0].Message.Content, nil
}
