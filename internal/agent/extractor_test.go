package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneport/support-assistant/internal/llm"
	"github.com/tuneport/support-assistant/internal/model"
)

// fakeLLM returns a canned completion.
type fakeLLM struct {
	content string
	err     error
	lastReq *llm.CompletionRequest
}

func (f *fakeLLM) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content}, nil
}

func (f *fakeLLM) Name() string { return "fake" }

func TestClassifyClosedLabelSet(t *testing.T) {
	cases := map[string]model.Intent{
		"refund":      model.IntentRefund,
		"music_query": model.IntentMusicQuery,
		"hello":       model.IntentHello,
		"REFUND\n":    model.IntentRefund,
		"maybe":       model.IntentUnknown,
	}

	for content, want := range cases {
		c := NewLLMClassifier(&fakeLLM{content: content}, "")
		got, err := c.Classify(context.Background(), "I want my money back")
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestClassifyError(t *testing.T) {
	c := NewLLMClassifier(&fakeLLM{err: errors.New("model unavailable")}, "")

	intent, err := c.Classify(context.Background(), "hi")
	require.Error(t, err)
	require.Equal(t, model.IntentUnknown, intent)
}

func TestClassifySendsInstructionAndUtterance(t *testing.T) {
	fake := &fakeLLM{content: "hello"}
	c := NewLLMClassifier(fake, "some-model")

	_, err := c.Classify(context.Background(), "good morning")
	require.NoError(t, err)

	require.Equal(t, "some-model", fake.lastReq.Model)
	require.NotEmpty(t, fake.lastReq.Instruction)
	require.Equal(t, "good morning", fake.lastReq.UserText)
}

func TestExtractParsesFields(t *testing.T) {
	fake := &fakeLLM{content: `{
		"invoice_id": 7,
		"invoice_line_ids": [70, 71],
		"customer_first_name": "Jane",
		"customer_last_name": null,
		"customer_phone": null,
		"track_name": null,
		"album_title": null,
		"artist_name": null,
		"purchase_date_iso_8601": "2024-05-01"
	}`}
	e := NewLLMExtractor(fake, "")

	fields, err := e.Extract(context.Background(), "refund invoice 7 please")
	require.NoError(t, err)

	require.Equal(t, int64(7), *fields.InvoiceID)
	require.Equal(t, []int64{70, 71}, fields.InvoiceLineIDs)
	require.Equal(t, "Jane", *fields.CustomerFirstName)
	require.Nil(t, fields.CustomerLastName)
	require.Equal(t, "2024-05-01", *fields.PurchaseDate)
}

func TestExtractStripsCodeFence(t *testing.T) {
	fake := &fakeLLM{content: "```json\n{\"invoice_id\": 12}\n```"}
	e := NewLLMExtractor(fake, "")

	fields, err := e.Extract(context.Background(), "invoice 12")
	require.NoError(t, err)
	require.Equal(t, int64(12), *fields.InvoiceID)
}

func TestExtractMalformedOutput(t *testing.T) {
	e := NewLLMExtractor(&fakeLLM{content: "I think the invoice is 7"}, "")

	_, err := e.Extract(context.Background(), "refund invoice 7")
	require.Error(t, err)
}

func TestExtractModelError(t *testing.T) {
	e := NewLLMExtractor(&fakeLLM{err: errors.New("timeout")}, "")

	_, err := e.Extract(context.Background(), "refund")
	require.Error(t, err)
}
