package llm

import (
	"context"
	"fmt"

	"Aivatar/backend/go/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini is an LLM client backed by the Google GenAI API. It is the only
// provider that supports live web-search grounding.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a new Gemini client.
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("unable to create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// GenerateText sends a single prompt and returns the raw reply text.
func (g *Gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	gm := g.client.GenerativeModel(g.model)
	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// Chat runs a conversational generation over the stored history.
func (g *Gemini) Chat(ctx context.Context, req *ChatRequest) (string, error) {
	gm := g.client.GenerativeModel(g.model)

	if req.SystemInstruction != "" {
		gm.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemInstruction)},
		}
	}
	if req.MaxOutputTokens > 0 {
		gm.SetMaxOutputTokens(req.MaxOutputTokens)
	}
	if req.WebSearch {
		gm.Tools = []*genai.Tool{
			{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}},
		}
	}

	cs := gm.StartChat()
	cs.History = toGenaiHistory(req.History)

	resp, err := cs.SendMessage(ctx, genai.Text(req.Message))
	if err != nil {
		return "", err
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty candidate set")
	}
	return text, nil
}

// toGenaiHistory converts stored turns to genai chat history. The assistant
// role maps to "model" on the wire.
func toGenaiHistory(history []models.ConversationTurn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := "user"
		if turn.Role == models.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}
	return contents
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var out string
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	return out
}
