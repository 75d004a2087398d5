package ai

import (
	"context"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"
)

type openAIClient struct {
	client   *openai.Client
	defaults Options
}

func newOpenAIClient(cfg FactoryConfig) *openAIClient {
	return &openAIClient{
		client: openai.NewClient(cfg.OpenAIKey),
		defaults: Options{
			Model:       valueOrDefault(cfg.Model, openai.GPT4o),
			Temperature: orFloat(cfg.Temperature, 0.7),
			MaxTokens:   orInt(cfg.MaxTokens, 1024),
		},
	}
}

func (c *openAIClient) Complete(ctx context.Context, systemPrompt string, messages []Message, opts Options) (string, error) {
	merged := c.merge(opts)

	chat := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		chat = append(chat, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		if m.ImageB64 != "" {
			chat = append(chat, openai.ChatCompletionMessage{
				Role: role,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: m.Text},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: fmt.Sprintf("data:%s;base64,%s", m.ImageMIME, m.ImageB64),
						},
					},
				},
			})
			continue
		}
		chat = append(chat, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       merged.Model,
		Messages:    chat,
		Temperature: float32(merged.Temperature),
		MaxTokens:   merged.MaxTokens,
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *openAIClient) merge(opts Options) Options {
	out := c.defaults
	if opts.Model != "" {
		out.Model = opts.Model
	}
	if opts.Temperature != 0 {
		out.Temperature = opts.Temperature
	}
	if opts.MaxTokens != 0 {
		out.MaxTokens = opts.MaxTokens
	}
	return out
}

// classify keeps the timeout/status distinction the callers branch on.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("openai: %w", ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("openai: %w", ErrTimeout)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Code: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	return err
}

func valueOrDefault(val, def string) string {
	if val != "" {
		return val
	}
	return def
}

func orInt(v, d int) int {
	if v != 0 {
		return v
	}
	return d
}

func orFloat(v, d float64) float64 {
	if v != 0 {
		return v
	}
	return d
}
