package ai

import (
	"context"
	"errors"
	"fmt"
)

// ErrTimeout marks an advisory call that ran out of time. Callers treat it as
// recoverable and fall back to deterministic rules.
var ErrTimeout = errors.New("advisory call timed out")

// StatusError is a non-2xx response from the provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("advisory API error (status %d): %s", e.Code, e.Body)
}

// Message is one turn in an advisory conversation. A message may carry an
// inline image alongside its text.
type Message struct {
	Role      string // "user" or "assistant"
	Text      string
	ImageB64  string // base64 image payload, optional
	ImageMIME string // required when ImageB64 is set, e.g. "image/png"
}

type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Client is a provider-agnostic advisory model client.
type Client interface {
	Complete(ctx context.Context, systemPrompt string, messages []Message, opts Options) (string, error)
}
