package llm

import (
	"context"
	"errors"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Request is a single chat completion call. Zero Temperature and MaxTokens
// leave the provider defaults in place.
type Request struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// ErrEmptyResponse is returned when the provider answered 2xx but the body
// carried no usable choice.
var ErrEmptyResponse = errors.New("llm returned empty response")

// StatusError reports a non-2xx answer from the provider.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm http status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }
