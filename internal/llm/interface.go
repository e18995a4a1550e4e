package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Provider defines the interface for LLM providers
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest holds the request parameters
type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
	Temperature  float64
}

// Message represents a chat message
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// ChatResponse holds the response from the LLM
type ChatResponse struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage tracks token consumption
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// DefaultMaxTokens is used when a request leaves MaxTokens unset.
const DefaultMaxTokens = 1024

// Ask sends a single user prompt and returns the trimmed reply text.
func Ask(ctx context.Context, p Provider, system, prompt string, maxTokens int) (string, error) {
	resp, err := p.Chat(ctx, ChatRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: "user", Content: prompt}},
		MaxTokens:    maxTokens,
		Temperature:  0.7,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

// ErrEmptyReply is returned by Ask when the model answers with nothing.
var ErrEmptyReply = errors.New("empty reply")

// Observer records outbound LLM calls.
type Observer interface {
	RecordUpstream(service string, err error, duration float64)
}

type observed struct {
	Provider
	obs Observer
}

// WithObserver reports every Chat call of p to obs as upstream "llm".
func WithObserver(p Provider, obs Observer) Provider {
	if p == nil || obs == nil {
		return p
	}
	return &observed{Provider: p, obs: obs}
}

func (o *observed) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	resp, err := o.Provider.Chat(ctx, req)
	o.obs.RecordUpstream("llm", err, time.Since(start).Seconds())
	return resp, err
}
