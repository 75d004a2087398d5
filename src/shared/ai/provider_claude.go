package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/castforge/castforge/src/webclient"
)

type claudeClient struct {
	apiKey     string
	httpClient *http.Client
	defaults   Options
}

func newClaudeClient(cfg FactoryConfig) *claudeClient {
	return &claudeClient{
		apiKey:     cfg.ClaudeKey,
		httpClient: webclient.NewDefault(0),
		defaults: Options{
			Model:       valueOrDefault(cfg.Model, "claude-3-5-sonnet-20241022"),
			Temperature: orFloat(cfg.Temperature, 0.7),
			MaxTokens:   orInt(cfg.MaxTokens, 1024),
		},
	}
}

func (c *claudeClient) Complete(ctx context.Context, systemPrompt string, messages []Message, opts Options) (string, error) {
	merged := c.merge(opts)

	apiMessages := make([]map[string]interface{}, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == "assistant" {
			role = "assistant"
		}
		content := []map[string]interface{}{}
		if m.ImageB64 != "" {
			content = append(content, map[string]interface{}{
				"type": "image",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": m.ImageMIME,
					"data":       m.ImageB64,
				},
			})
		}
		content = append(content, map[string]interface{}{"type": "text", "text": m.Text})
		apiMessages = append(apiMessages, map[string]interface{}{"role": role, "content": content})
	}

	reqBody := map[string]interface{}{
		"model":       merged.Model,
		"messages":    apiMessages,
		"system":      systemPrompt,
		"max_tokens":  merged.MaxTokens,
		"temperature": merged.Temperature,
	}
	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.anthropic.com/v1/messages", bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("claude: %w", ErrTimeout)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", fmt.Errorf("claude: %w", ErrTimeout)
		}
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("no response from Claude")
	}
	return result.Content[0].Text, nil
}

func (c *claudeClient) merge(opts Options) Options {
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
