package toolselect

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"Aivatar/backend/go/internal/llm"
	"Aivatar/backend/go/internal/models"
	"Aivatar/backend/go/pkg/logger"
)

const (
	// MaxIterations bounds the selection calls per tool server.
	MaxIterations = 3
	// runningResultCap bounds accumulated intermediate results fed back
	// into the next selection prompt.
	runningResultCap = 5000
	// finalResultCap bounds the result text included in the final context.
	finalResultCap = 10000
)

// ToolCaller invokes one named tool against a tool server.
type ToolCaller interface {
	CallTool(ctx context.Context, endpoint string, headers map[string]string, name string, args map[string]interface{}) (string, error)
}

// Runner drives the bounded selection loop for one tool server.
type Runner struct {
	model  llm.LLM
	caller ToolCaller
	log    *logger.Logger
}

// NewRunner creates a Runner.
func NewRunner(model llm.LLM, caller ToolCaller, log *logger.Logger) *Runner {
	return &Runner{model: model, caller: caller, log: log}
}

// Run executes up to MaxIterations select-invoke-classify rounds against one
// server. It returns the context block to surface, or ok=false when the
// server contributed nothing.
func (r *Runner) Run(ctx context.Context, message string, server models.MCPServerConfig, tools []models.ToolDescriptor) (string, bool) {
	if len(tools) == 0 {
		return "", false
	}

	catalogue := RenderCatalogue(tools)
	headers := server.HeaderMap()
	var accumulated strings.Builder

	for i := 0; i < MaxIterations; i++ {
		prompt := selectionPrompt(message, server.Name, catalogue, accumulated.String())
		raw, err := r.model.GenerateText(ctx, prompt)
		if err != nil {
			r.log.WithError(err).WithField("server", server.Name).Warn("tool selection call failed")
			break
		}

		selection, outcome := ParseSelection(raw)
		if outcome != OutcomeToolCall {
			break
		}

		result, err := r.caller.CallTool(ctx, server.URL, headers, selection.Tool, selection.Args)
		if err != nil {
			r.log.WithError(err).WithField("tool", selection.Tool).Warn("tool invocation failed")
			break
		}

		if IsIntermediate(selection.Tool, result) {
			accumulated.WriteString(fmt.Sprintf("Result of %s:\n%s\n", selection.Tool, truncate(result, runningResultCap)))
			continue
		}

		return fmt.Sprintf("Result of %s (server %s):\n%s", selection.Tool, server.Name, truncate(result, finalResultCap)), true
	}

	// Iteration bound reached, or the loop stopped after intermediate
	// results only: surface whatever accumulated.
	if accumulated.Len() > 0 {
		return truncate(accumulated.String(), finalResultCap), true
	}
	return "", false
}

func selectionPrompt(message, serverName, catalogue, priorResults string) string {
	var sb strings.Builder
	sb.WriteString("You choose at most one tool to help answer a user message.\n")
	sb.WriteString(fmt.Sprintf("Tools available on server %q:\n%s\n", serverName, catalogue))
	if priorResults != "" {
		sb.WriteString("Results from tools already invoked:\n")
		sb.WriteString(priorResults)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("User message: %s\n\n", message))
	sb.WriteString(`Reply with a single JSON object {"toolName": "...", "args": {...}} naming one tool from the list, `)
	sb.WriteString(fmt.Sprintf("or reply exactly %s if no tool applies.", NoToolSentinel))
	return sb.String()
}

// intermediateMarkers are phrases indicating a result that merely resolves
// an identifier for a follow-up call. Best-effort heuristic.
var intermediateMarkers = []string{
	"resolved to",
	"use this id",
	"\"id\":",
}

// IsIntermediate reports whether a tool result looks like a lookup step
// rather than a final answer. This is a substring heuristic, not a
// correctness guarantee.
func IsIntermediate(toolName, result string) bool {
	name := strings.ToLower(toolName)
	if strings.HasPrefix(name, "resolve") || strings.Contains(name, "search") || strings.Contains(name, "list") {
		return true
	}
	lower := strings.ToLower(result)
	for _, marker := range intermediateMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
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
