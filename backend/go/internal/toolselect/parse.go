// Package toolselect implements the model-driven tool selection loop: it
// renders a tool catalogue, asks the model to pick at most one tool per
// iteration, and classifies results as intermediate or final.
package toolselect

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NoToolSentinel is what the model is told to emit when no tool applies.
const NoToolSentinel = "NO_TOOL"

// Outcome classifies one model selection reply.
type Outcome int

const (
	// OutcomeToolCall is a well-formed selection of a tool plus arguments.
	OutcomeToolCall Outcome = iota
	// OutcomeNoTool is an explicit "no tool applies" reply.
	OutcomeNoTool
	// OutcomeMalformed is anything else. Malformed is not inferred as
	// no-tool; the two stop the loop for different reasons.
	OutcomeMalformed
)

// Selection is one parsed tool choice.
type Selection struct {
	Tool string
	Args map[string]interface{}
}

type selectionWire struct {
	ToolName string                 `json:"toolName"`
	Args     map[string]interface{} `json:"args"`
}

// ParseSelection classifies the raw model reply as a tool call, an explicit
// no-tool answer, or malformed output.
func ParseSelection(raw string) (Selection, Outcome) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Selection{}, OutcomeMalformed
	}
	if strings.Contains(strings.ToUpper(trimmed), NoToolSentinel) {
		return Selection{}, OutcomeNoTool
	}

	candidate := balancedObject(trimmed)
	if candidate == "" {
		return Selection{}, OutcomeMalformed
	}

	var wire selectionWire
	dec := json.NewDecoder(bytes.NewReader([]byte(candidate)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return Selection{}, OutcomeMalformed
	}
	if strings.TrimSpace(wire.ToolName) == "" {
		return Selection{}, OutcomeMalformed
	}
	if wire.Args == nil {
		wire.Args = map[string]interface{}{}
	}
	return Selection{Tool: wire.ToolName, Args: wire.Args}, OutcomeToolCall
}

// balancedObject extracts the first balanced {...} substring, honoring JSON
// string literals and escapes. Returns "" when no balanced object exists.
func balancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
