package embedding

import (
	"context"
	"fmt"

	"Aivatar/backend/go/internal/config"
)

// Embedding is the interface all embedding-model clients implement.
type Embedding interface {
	// Embed generates the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch generates embedding vectors for a batch of texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// NewModel builds an embedding client for the configured provider.
func NewModel(cfg config.EmbeddingConfig) (Embedding, error) {
	switch cfg.Provider {
	case "gemini", "google":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("google embedding provider selected but no API key configured")
		}
		return NewGoogleModel(cfg.Gemini.APIKey, cfg.Gemini.Model)
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai embedding provider selected but no API key configured")
		}
		return NewOpenAIModel(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "ollama":
		return NewOllamaModel(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
