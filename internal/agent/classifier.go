// Package agent implements the turn router for the support assistant: intent
// classification, refund field gathering, store lookups and reply formatting.
package agent

import (
	"context"
	"time"

	"github.com/tuneport/support-assistant/internal/llm"
	"github.com/tuneport/support-assistant/internal/model"
	"github.com/tuneport/support-assistant/pkg/metrics"
)

// routeInstructions is the fixed instruction set for intent classification.
const routeInstructions = `You are a customer service agent for an online music store.
Analyze the user's message and classify it into one of these categories:

1. REFUND - If they mention refund, return, money back, or are unhappy with a purchase
2. MUSIC_QUERY - If they ask about songs, artists, albums, or our music catalog
3. HELLO - If they're greeting or asking what you can do

Return ONLY ONE of these exact words: "refund", "music_query", or "hello"`

// Classifier returns one label from the closed intent set for an utterance.
type Classifier interface {
	Classify(ctx context.Context, utterance string) (model.Intent, error)
}

// LLMClassifier classifies intents using an external language model.
type LLMClassifier struct {
	client llm.Client
	model  string
}

// NewLLMClassifier creates a classifier backed by the given LLM client.
// An empty model selects the provider's default.
func NewLLMClassifier(client llm.Client, modelName string) *LLMClassifier {
	return &LLMClassifier{
		client: client,
		model:  modelName,
	}
}

// Classify sends the utterance to the model with the fixed instruction set.
// Output outside the closed label set maps to IntentUnknown; the caller
// treats unknown and errors alike as the fallback path.
func (c *LLMClassifier) Classify(ctx context.Context, utterance string) (model.Intent, error) {
	resp, err := complete(ctx, c.client, "route", &llm.CompletionRequest{
		Model:       c.model,
		Instruction: routeInstructions,
		UserText:    utterance,
		MaxTokens:   16,
	})
	if err != nil {
		return model.IntentUnknown, err
	}

	return model.ParseIntent(resp.Content), nil
}

// complete runs one model call and records its duration and token usage
// under the given purpose label.
func complete(ctx context.Context, client llm.Client, purpose string, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	start := time.Now()
	resp, err := client.Complete(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LLMCallDuration.WithLabelValues(client.Name(), purpose, status).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	metrics.LLMTokensTotal.WithLabelValues(client.Name(), "in").Add(float64(resp.TokensIn))
	metrics.LLMTokensTotal.WithLabelValues(client.Name(), "out").Add(float64(resp.TokensOut))

	return resp, nil
}
