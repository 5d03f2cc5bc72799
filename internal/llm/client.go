// Package llm adapts external language model providers behind a single
// completion interface.
package llm

import (
	"context"
)

// CompletionRequest is one single-shot completion: a fixed instruction plus
// one user utterance. Conversation history is never replayed to the model;
// it lives in the session, and each turn stands alone.
type CompletionRequest struct {
	// Model overrides the provider default when non-empty.
	Model string
	// Instruction is sent as the system prompt.
	Instruction string
	// UserText is the utterance being classified or mined for fields.
	UserText string
	// MaxTokens caps the completion length. Zero means the provider default.
	MaxTokens int
	Temperature float64
}

// CompletionResponse carries the completion text plus usage accounting.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is implemented once per provider.
type Client interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name identifies the provider in logs and metrics.
	Name() string
}

// Provider selects which client NewClient constructs.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// NewClient creates a client for the named provider. Unrecognized providers
// fall back to Anthropic.
func NewClient(provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	default:
		return NewAnthropicClient(apiKey)
	}
}
