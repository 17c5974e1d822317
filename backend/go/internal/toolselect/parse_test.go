package toolselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelectionToolCall(t *testing.T) {
	sel, outcome := ParseSelection(`{"toolName": "get_weather", "args": {"city": "Oslo"}}`)
	require.Equal(t, OutcomeToolCall, outcome)
	assert.Equal(t, "get_weather", sel.Tool)
	assert.Equal(t, "Oslo", sel.Args["city"])
}

func TestParseSelectionSurroundingProse(t *testing.T) {
	raw := "Sure, I will call a tool:\n```json\n{\"toolName\": \"search\", \"args\": {}}\n```\nDone."
	sel, outcome := ParseSelection(raw)
	require.Equal(t, OutcomeToolCall, outcome)
	assert.Equal(t, "search", sel.Tool)
}

func TestParseSelectionMissingArgs(t *testing.T) {
	sel, outcome := ParseSelection(`{"toolName": "ping"}`)
	require.Equal(t, OutcomeToolCall, outcome)
	assert.NotNil(t, sel.Args)
	assert.Empty(t, sel.Args)
}

func TestParseSelectionNoTool(t *testing.T) {
	for _, raw := range []string{"NO_TOOL", "no_tool", "  NO_TOOL  ", "The answer is NO_TOOL."} {
		_, outcome := ParseSelection(raw)
		assert.Equal(t, OutcomeNoTool, outcome, "raw=%q", raw)
	}
}

func TestParseSelectionMalformed(t *testing.T) {
	cases := []string{
		"",
		"I cannot help with that.",
		`{"toolName": ""}`,
		`{"toolName": "x", "extra": true}`,
		`{"toolName": "x", "args": {`,
		`{"tool": "x"}`,
	}
	for _, raw := range cases {
		_, outcome := ParseSelection(raw)
		assert.Equal(t, OutcomeMalformed, outcome, "raw=%q", raw)
	}
}

func TestParseSelectionNestedBraces(t *testing.T) {
	raw := `{"toolName": "query", "args": {"filter": "{\"a\": 1}"}}`
	sel, outcome := ParseSelection(raw)
	require.Equal(t, OutcomeToolCall, outcome)
	assert.Equal(t, `{"a": 1}`, sel.Args["filter"])
}
