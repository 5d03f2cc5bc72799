package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tuneport/support-assistant/internal/llm"
	"github.com/tuneport/support-assistant/internal/model"
)

// gatherInfoInstructions is the fixed instruction for refund field extraction.
const gatherInfoInstructions = `You are managing an online music store that sells song tracks. Customers can buy multiple tracks at a time and these purchases are recorded in a database as an Invoice per purchase and an associated set of Invoice Lines for each purchased track.

Your task is to help customers who would like a refund for one or more of the tracks they've purchased. In order for you to be able to refund them, the customer must specify the Invoice ID to get a refund on all the tracks they bought in a single transaction, or one or more Invoice Line IDs if they would like refunds on individual tracks.

Often a user will not know the specific Invoice ID(s) or Invoice Line ID(s) for which they would like a refund. In this case you can help them look up their invoices by asking them to specify:
- Required: Their first name, last name, and phone number.
- Optionally: The track name, artist name, album name, or purchase date.

Extract everything the customer has specified into a JSON object with exactly these keys:
{"invoice_id": int or null, "invoice_line_ids": [int] or null, "customer_first_name": string or null, "customer_last_name": string or null, "customer_phone": string or null, "track_name": string or null, "album_title": string or null, "artist_name": string or null, "purchase_date_iso_8601": string or null}

Do not make up values. Leave fields as null if you don't know their value. Respond with the JSON object only.`

// Extractor pulls structured refund fields out of conversation text. Fields
// the model is not confident about stay nil; it never fabricates values.
type Extractor interface {
	Extract(ctx context.Context, utterance string) (model.PurchaseFields, error)
}

// LLMExtractor extracts purchase fields using an external language model.
type LLMExtractor struct {
	client llm.Client
	model  string
}

// NewLLMExtractor creates an extractor backed by the given LLM client.
func NewLLMExtractor(client llm.Client, modelName string) *LLMExtractor {
	return &LLMExtractor{
		client: client,
		model:  modelName,
	}
}

// Extract sends the utterance to the model and parses the JSON object it
// returns. Malformed output is an extraction failure, not a partial result.
func (e *LLMExtractor) Extract(ctx context.Context, utterance string) (model.PurchaseFields, error) {
	resp, err := complete(ctx, e.client, "gather", &llm.CompletionRequest{
		Model:       e.model,
		Instruction: gatherInfoInstructions,
		UserText:    utterance,
		MaxTokens:   512,
	})
	if err != nil {
		return model.PurchaseFields{}, err
	}

	fields, err := parsePurchaseFields(resp.Content)
	if err != nil {
		return model.PurchaseFields{}, fmt.Errorf("parse extraction output: %w", err)
	}

	return fields, nil
}

// parsePurchaseFields decodes a JSON object into PurchaseFields. Models often
// wrap JSON in a markdown code fence, so fences are stripped first.
func parsePurchaseFields(content string) (model.PurchaseFields, error) {
	raw := stripCodeFence(content)

	var fields model.PurchaseFields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return model.PurchaseFields{}, err
	}

	return fields, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
