package openai

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"
)

type EmbeddingClient struct {
	client *openai.Client
	model  string
}

// NewEmbeddingClient creates an OpenAI embedding client
func NewEmbeddingClient(apiKey, model string) *EmbeddingClient {
	return &EmbeddingClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// EmbedDocuments embeds a batch of chunk texts in a single API call and
// returns one vector per input, in input order.
func (c *EmbeddingClient) EmbedDocuments(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([]pgvector.Vector, len(resp.Data))
	for i, data := range resp.Data {
		embedding := make([]float32, len(data.Embedding))
		copy(embedding, data.Embedding)
		vectors[i] = pgvector.NewVector(embedding)
	}

	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (c *EmbeddingClient) EmbedQuery(ctx context.Context, text string) (pgvector.Vector, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("failed to embed query: %w", err)
	}

	if len(resp.Data) == 0 {
		return pgvector.Vector{}, fmt.Errorf("no embedding returned for query")
	}

	embedding := make([]float32, len(resp.Data[0].Embedding))
	copy(embedding, resp.Data[0].Embedding)

	return pgvector.NewVector(embedding), nil
}
