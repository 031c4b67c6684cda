// Package openai adapts the OpenAI API (or any compatible endpoint) to
// the embedder and fact-extractor ports.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// newClient builds a client for the given credentials; baseURL may be
// empty to use the default endpoint.
func newClient(apiKey, baseURL string) openai.Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return openai.NewClient(opts...)
}

// Embedder turns text into embedding vectors via the embeddings API.
type Embedder struct {
	client openai.Client
	model  string
}

// NewEmbedder creates an embedder for the given model.
func NewEmbedder(apiKey, baseURL, model string) *Embedder {
	return &Embedder{
		client: newClient(apiKey, baseURL),
		model:  model,
	}
}

// Embed returns the embedding vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}

	raw := resp.Data[0].Embedding
	embedding := make([]float32, len(raw))
	for i, v := range raw {
		embedding[i] = float32(v)
	}
	return embedding, nil
}
