package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"recall-backend/domain/core/entities"

	"github.com/openai/openai-go"
)

const factPrompt = `You extract durable facts about the user from a conversation.
Return a JSON object of the form {"facts": ["...", "..."]} containing short,
self-contained statements worth remembering. Return {"facts": []} when the
conversation contains nothing worth remembering. Respond with JSON only.`

const relationPrompt = `You extract knowledge-graph triples from a list of facts.
Return a JSON object of the form
{"relations": [{"source": "...", "relationship": "...", "target": "..."}]}.
Relationship labels should be short snake_case verbs. Respond with JSON only.`

// Extractor derives facts and graph triples from conversation using a
// chat model.
type Extractor struct {
	client      openai.Client
	model       string
	temperature float64
}

// NewExtractor creates an extractor for the given chat model.
func NewExtractor(apiKey, baseURL, model string) *Extractor {
	return &Extractor{
		client:      newClient(apiKey, baseURL),
		model:       model,
		temperature: 0.2,
	}
}

// ExtractFacts returns the storable facts found in the messages. A
// non-empty prompt overrides the default extraction instructions.
func (e *Extractor) ExtractFacts(ctx context.Context, messages []entities.Message, prompt string) ([]string, error) {
	system := factPrompt
	if prompt != "" {
		system = prompt
	}

	var conversation strings.Builder
	for _, m := range messages {
		conversation.WriteString(m.Role)
		conversation.WriteString(": ")
		conversation.WriteString(m.Content)
		conversation.WriteByte('\n')
	}

	content, err := e.complete(ctx, system, conversation.String())
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Facts []string `json:"facts"`
	}
	if err := decodeJSONResponse(content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse fact extraction response: %w", err)
	}
	return parsed.Facts, nil
}

// ExtractRelations returns graph triples derived from the given facts.
func (e *Extractor) ExtractRelations(ctx context.Context, facts []string) ([]entities.Relation, error) {
	content, err := e.complete(ctx, relationPrompt, strings.Join(facts, "\n"))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Relations []entities.Relation `json:"relations"`
	}
	if err := decodeJSONResponse(content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse relation extraction response: %w", err)
	}

	relations := parsed.Relations[:0]
	for _, r := range parsed.Relations {
		if r.Source != "" && r.Relationship != "" && r.Target != "" {
			relations = append(relations, r)
		}
	}
	return relations, nil
}

func (e *Extractor) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:       e.model,
		Temperature: openai.Float(e.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// decodeJSONResponse parses a model response that should be JSON,
// tolerating markdown code fences around the object.
func decodeJSONResponse(content string, out any) error {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	return json.Unmarshal([]byte(trimmed), out)
}
