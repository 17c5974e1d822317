package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Aivatar/backend/go/internal/models"

	ollama "github.com/ollama/ollama/api"
)

// Ollama is an LLM client for a locally hosted Ollama instance.
type Ollama struct {
	client *ollama.Client
	model  string
}

// NewOllama creates a new Ollama client. An empty baseURL defaults to the
// standard local endpoint.
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL '%s': %w", baseURL, err)
	}
	httpClient := &http.Client{Timeout: 120 * time.Second}
	return &Ollama{
		client: ollama.NewClient(parsedURL, httpClient),
		model:  model,
	}, nil
}

// GenerateText sends a single prompt and returns the raw reply text.
func (o *Ollama) GenerateText(ctx context.Context, prompt string) (string, error) {
	stream := false
	var sb strings.Builder
	err := o.client.Generate(ctx, &ollama.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
	}, func(resp ollama.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}
	return sb.String(), nil
}

// Chat runs a conversational generation over the stored history. The
// WebSearch flag is ignored: grounding is not available on this provider.
func (o *Ollama) Chat(ctx context.Context, req *ChatRequest) (string, error) {
	messages := make([]ollama.Message, 0, len(req.History)+2)
	if req.SystemInstruction != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: req.SystemInstruction})
	}
	for _, turn := range req.History {
		role := "user"
		if turn.Role == models.RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, ollama.Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, ollama.Message{Role: "user", Content: req.Message})

	chatReq := &ollama.ChatRequest{
		Model:    o.model,
		Messages: messages,
	}
	stream := false
	chatReq.Stream = &stream
	if req.MaxOutputTokens > 0 {
		chatReq.Options = map[string]interface{}{"num_predict": int(req.MaxOutputTokens)}
	}

	var sb strings.Builder
	err := o.client.Chat(ctx, chatReq, func(resp ollama.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}
	return sb.String(), nil
}
