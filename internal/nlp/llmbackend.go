package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/deepsearch/internal/llm"
)

// LLMBackend serves entities and sentiment from an OpenAI-compatible chat
// model with a JSON-only contract.
type LLMBackend struct {
	Client llm.Client
	Model  string
}

func (b *LLMBackend) Name() string { return "llm" }

const entitySystemMessage = "You extract named entities. Respond with strict JSON only, no narration. " +
	"The JSON schema is {\"PERSON\": string[], \"ORG\": string[], \"GPE\": string[], \"PRODUCT\": string[]}. " +
	"Copy entity strings exactly as they appear in the text. Use empty arrays when nothing matches."

const sentimentSystemMessage = "You score the sentiment of text. Respond with strict JSON only, no narration. " +
	"The JSON schema is {\"polarity\": number in [-1,1], \"subjectivity\": number in [0,1]}."

// Entities implements EntityRecognizer.
func (b *LLMBackend) Entities(ctx context.Context, text string) (map[string][]string, error) {
	raw, err := b.complete(ctx, entitySystemMessage, text)
	if err != nil {
		return nil, err
	}
	var out map[string][]string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parse entities json: %w", err)
	}
	return out, nil
}

// Score implements SentimentScorer.
func (b *LLMBackend) Score(ctx context.Context, text string) (float64, float64, error) {
	raw, err := b.complete(ctx, sentimentSystemMessage, text)
	if err != nil {
		return 0, 0, err
	}
	var payload struct {
		Polarity     *float64 `json:"polarity"`
		Subjectivity *float64 `json:"subjectivity"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return 0, 0, fmt.Errorf("parse sentiment json: %w", err)
	}
	if payload.Polarity == nil || payload.Subjectivity == nil {
		return 0, 0, errors.New("sentiment json missing fields")
	}
	return *payload.Polarity, *payload.Subjectivity, nil
}

func (b *LLMBackend) complete(ctx context.Context, system, text string) (string, error) {
	if b.Client == nil || b.Model == "" {
		return "", errors.New("llm backend not configured")
	}
	resp, err := b.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("nlp call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices")
	}
	return stripCodeFence(resp.Choices[0].Message.Content), nil
}

// stripCodeFence removes a surrounding ```json fence some models add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
