// internal/llm/openai/openai.go
package openai

import (
	"context"
	"fmt"

	"github.com/newthinker/trendpulse/internal/llm"
	"github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Provider implements the LLM interface for OpenAI and OpenAI-compatible
// servers such as a local vLLM or LM Studio endpoint.
type Provider struct {
	client *openai.Client
	model  string
}

// New creates a new OpenAI provider. A baseURL points the client at an
// OpenAI-compatible server, in which case the API key may be empty.
func New(apiKey, model, baseURL string) (*Provider, error) {
	if apiKey == "" && baseURL == "" {
		return nil, fmt.Errorf("API key required")
	}
	if model == "" {
		model = DefaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(cfg)
	return &Provider{client: client, model: model}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

// Chat sends a chat request to the OpenAI API.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)

	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}

	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai API returned no choices")
	}

	return &llm.ChatResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		FinishReason: string(resp.Choices[0].FinishReason),
	}, nil
}
