package llm

import (
	"context"
	"fmt"

	"Aivatar/backend/go/internal/config"
	"Aivatar/backend/go/internal/models"
)

// ChatRequest carries everything the model needs for one conversational
// generation: the assembled system instruction, the stored turn history and
// the new user message.
type ChatRequest struct {
	SystemInstruction string
	History           []models.ConversationTurn
	Message           string
	MaxOutputTokens   int32
	// WebSearch attaches live search grounding as a model capability.
	// Providers without the capability ignore the flag.
	WebSearch bool
}

// LLM is the interface all chat-model clients implement. GenerateText is the
// single-shot path used for tool selection and query synthesis; Chat is the
// full conversational path.
type LLM interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, req *ChatRequest) (string, error)
}

// NewClient builds an LLM client for the configured provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini provider selected but no API key configured")
		}
		return NewGemini(ctx, cfg.Gemini.Model, cfg.Gemini.APIKey)
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai provider selected but no API key configured")
		}
		return NewOpenAI(cfg.OpenAI.Model, cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	case "ollama":
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
