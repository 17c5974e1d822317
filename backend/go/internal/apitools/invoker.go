// Package apitools invokes statically configured HTTP tools (generic,
// GraphQL or OpenAPI-flavored) on behalf of an agent.
package apitools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"Aivatar/backend/go/internal/llm"
	"Aivatar/backend/go/internal/models"
	"Aivatar/backend/go/internal/relevance"
	"Aivatar/backend/go/pkg/logger"
)

const (
	invokeTimeout  = 15 * time.Second
	successBodyCap = 8000
	failureBodyCap = 1000
)

// Invoker evaluates and calls configured API tools. Each tool is judged
// independently for every request.
type Invoker struct {
	model  llm.LLM
	client *http.Client
	log    *logger.Logger
}

// NewInvoker creates an Invoker with the standard invocation timeout.
func NewInvoker(model llm.LLM, log *logger.Logger) *Invoker {
	return &Invoker{
		model:  model,
		client: &http.Client{Timeout: invokeTimeout},
		log:    log,
	}
}

// MaybeInvoke calls the tool when the relevance gate passes. The returned
// text is a context block: tool output, a bounded diagnostic for non-2xx
// responses, or an explicit error note for transport failures. ok=false
// means the gate did not pass and the tool contributed nothing.
func (inv *Invoker) MaybeInvoke(ctx context.Context, tool models.APIToolConfig, message string) (string, bool) {
	if !relevance.APIToolRelevant(tool, message) {
		return "", false
	}

	req, err := inv.buildRequest(ctx, tool, message)
	if err != nil {
		inv.log.WithError(err).WithField("tool", tool.Name).Warn("unable to build api tool request")
		return fmt.Sprintf("[error calling tool %s: %v]", tool.Name, err), true
	}

	resp, err := inv.client.Do(req)
	if err != nil {
		inv.log.WithError(err).WithField("tool", tool.Name).Warn("api tool call failed")
		return fmt.Sprintf("[error calling tool %s: %v]", tool.Name, err), true
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, successBodyCap+1))
	if err != nil {
		return fmt.Sprintf("[error calling tool %s: %v]", tool.Name, err), true
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Non-2xx bodies still carry diagnostic value for the model.
		return fmt.Sprintf("Tool %s responded with status %d: %s",
			tool.Name, resp.StatusCode, truncate(string(body), failureBodyCap)), true
	}
	return fmt.Sprintf("Result of tool %s:\n%s", tool.Name, truncate(string(body), successBodyCap)), true
}

func (inv *Invoker) buildRequest(ctx context.Context, tool models.APIToolConfig, message string) (*http.Request, error) {
	method := strings.ToUpper(tool.Method)
	target := tool.URL

	var body io.Reader
	if method == "GET" {
		parsed, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("invalid url: %w", err)
		}
		q := parsed.Query()
		q.Set("query", message)
		parsed.RawQuery = q.Encode()
		target = parsed.String()
	} else {
		payload, err := inv.buildBody(ctx, tool, message)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	for name, value := range tool.HeaderMap() {
		req.Header.Set(sanitizeHeaderName(name), value)
	}
	if tool.APIKey != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+tool.APIKey)
	}
	return req, nil
}

// buildBody synthesizes the request body by declared or detected tool kind.
func (inv *Invoker) buildBody(ctx context.Context, tool models.APIToolConfig, message string) ([]byte, error) {
	switch detectKind(tool) {
	case models.ToolKindGraphQL:
		query, err := inv.synthesizeGraphQL(ctx, tool, message)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]string{"query": query})
	case models.ToolKindOpenAPI:
		return inv.synthesizeJSONBody(ctx, tool, message)
	default:
		return json.Marshal(map[string]string{
			"query":   message,
			"message": message,
			"text":    message,
		})
	}
}

func (inv *Invoker) synthesizeGraphQL(ctx context.Context, tool models.APIToolConfig, message string) (string, error) {
	prompt := fmt.Sprintf(
		"Write a single GraphQL query answering the user request below. "+
			"Reply with the query only, no prose and no code fences.\n\nSchema/notes:\n%s\n%s\n\nUser request: %s",
		tool.SchemaText, tool.Instructions, message)
	raw, err := inv.model.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("query synthesis failed: %w", err)
	}
	query := stripCodeFences(raw)
	if query == "" {
		return "", fmt.Errorf("query synthesis produced empty output")
	}
	return query, nil
}

func (inv *Invoker) synthesizeJSONBody(ctx context.Context, tool models.APIToolConfig, message string) ([]byte, error) {
	prompt := fmt.Sprintf(
		"Write the JSON request body for the API described below, answering the user request. "+
			"Reply with a single JSON object only, no prose and no code fences.\n\nAPI description:\n%s\n%s\n\nUser request: %s",
		tool.SchemaText, tool.Instructions, message)
	raw, err := inv.model.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("body synthesis failed: %w", err)
	}
	cleaned := stripCodeFences(raw)
	if !json.Valid([]byte(cleaned)) {
		return nil, fmt.Errorf("body synthesis produced invalid JSON")
	}
	return []byte(cleaned), nil
}

// detectKind prefers the declared kind and falls back to metadata sniffing.
func detectKind(tool models.APIToolConfig) models.ToolKind {
	switch tool.Kind {
	case models.ToolKindGraphQL, models.ToolKindOpenAPI, models.ToolKindGeneric:
		return tool.Kind
	}
	lower := strings.ToLower(tool.URL + " " + tool.Instructions + " " + tool.SchemaText)
	if strings.Contains(lower, "graphql") {
		return models.ToolKindGraphQL
	}
	if strings.Contains(lower, "openapi") || strings.Contains(lower, "swagger") {
		return models.ToolKindOpenAPI
	}
	return models.ToolKindGeneric
}

// sanitizeHeaderName removes colons and spaces, which smuggle extra header
// syntax when present in a configured name.
func sanitizeHeaderName(name string) string {
	name = strings.ReplaceAll(name, ":", "")
	name = strings.ReplaceAll(name, " ", "")
	return name
}

// stripCodeFences removes a ``` wrapper (with optional language tag).
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop a language tag on the opening fence line.
		firstLine := strings.TrimSpace(trimmed[:idx])
		if !strings.ContainsAny(firstLine, "{(") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// truncate caps s at limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
