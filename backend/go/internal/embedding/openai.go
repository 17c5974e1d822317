package embedding

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAIModel is an embedding client for the OpenAI API.
type OpenAIModel struct {
	client *openai.Client
	model  string
}

// NewOpenAIModel creates a new OpenAIModel client.
func NewOpenAIModel(apiKey, modelName string) (*OpenAIModel, error) {
	cfg := openai.DefaultConfig(apiKey)
	return &OpenAIModel{
		client: openai.NewClientWithConfig(cfg),
		model:  modelName,
	}, nil
}

// Embed generates the embedding vector for a single text.
func (m *OpenAIModel) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("openai returned no embedding")
	}
	return vectors[0], nil
}

// EmbedBatch generates embedding vectors for a batch of texts.
func (m *OpenAIModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := m.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(m.model),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create embeddings: %w", err)
	}

	embeddings := make([][]float32, 0, len(resp.Data))
	for _, item := range resp.Data {
		embeddings = append(embeddings, item.Embedding)
	}
	return embeddings, nil
}
