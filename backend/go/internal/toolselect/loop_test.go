package toolselect

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Aivatar/backend/go/internal/llm"
	"Aivatar/backend/go/internal/models"
	"Aivatar/backend/go/pkg/logger"
)

// scriptedModel replays canned selection replies in order.
type scriptedModel struct {
	replies []string
	prompts []string
}

func (m *scriptedModel) GenerateText(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if len(m.prompts) > len(m.replies) {
		return "", errors.New("no more scripted replies")
	}
	return m.replies[len(m.prompts)-1], nil
}

func (m *scriptedModel) Chat(context.Context, *llm.ChatRequest) (string, error) {
	return "", errors.New("not used")
}

type fakeCaller struct {
	results map[string]string
	err     error
	calls   []string
}

func (c *fakeCaller) CallTool(_ context.Context, _ string, _ map[string]string, name string, _ map[string]interface{}) (string, error) {
	c.calls = append(c.calls, name)
	if c.err != nil {
		return "", c.err
	}
	return c.results[name], nil
}

var testServer = models.MCPServerConfig{Name: "weather", URL: "http://mcp.example/weather"}

var testTools = []models.ToolDescriptor{
	{Name: "resolve_city", Description: "resolve a city name to an id"},
	{Name: "get_forecast", Description: "forecast for a city id"},
}

func testLog() *logger.Logger { return logger.New("test", "", "") }

func TestRunFinalOnFirstIteration(t *testing.T) {
	model := &scriptedModel{replies: []string{`{"toolName": "get_forecast", "args": {"id": "42"}}`}}
	caller := &fakeCaller{results: map[string]string{"get_forecast": "sunny, 21C"}}
	runner := NewRunner(model, caller, testLog())

	block, ok := runner.Run(context.Background(), "weather in oslo?", testServer, testTools)
	require.True(t, ok)
	assert.Contains(t, block, "get_forecast")
	assert.Contains(t, block, "sunny, 21C")
	assert.Len(t, caller.calls, 1)
}

func TestRunIntermediateThenFinal(t *testing.T) {
	model := &scriptedModel{replies: []string{
		`{"toolName": "resolve_city", "args": {"name": "oslo"}}`,
		`{"toolName": "get_forecast", "args": {"id": "42"}}`,
	}}
	caller := &fakeCaller{results: map[string]string{
		"resolve_city": `{"id": "42"}`,
		"get_forecast": "sunny, 21C",
	}}
	runner := NewRunner(model, caller, testLog())

	block, ok := runner.Run(context.Background(), "weather in oslo?", testServer, testTools)
	require.True(t, ok)
	assert.Contains(t, block, "sunny, 21C")
	assert.Equal(t, []string{"resolve_city", "get_forecast"}, caller.calls)
	// The second prompt must carry the intermediate result forward.
	require.Len(t, model.prompts, 2)
	assert.Contains(t, model.prompts[1], `{"id": "42"}`)
}

func TestRunIterationBound(t *testing.T) {
	reply := `{"toolName": "resolve_city", "args": {}}`
	model := &scriptedModel{replies: []string{reply, reply, reply, reply, reply}}
	caller := &fakeCaller{results: map[string]string{"resolve_city": "resolved to 42"}}
	runner := NewRunner(model, caller, testLog())

	block, ok := runner.Run(context.Background(), "weather?", testServer, testTools)
	require.True(t, ok)
	assert.Len(t, caller.calls, MaxIterations)
	assert.Contains(t, block, "resolved to 42")
}

func TestRunNoTool(t *testing.T) {
	model := &scriptedModel{replies: []string{"NO_TOOL"}}
	caller := &fakeCaller{}
	runner := NewRunner(model, caller, testLog())

	block, ok := runner.Run(context.Background(), "hello", testServer, testTools)
	assert.False(t, ok)
	assert.Empty(t, block)
	assert.Empty(t, caller.calls)
}

func TestRunMalformedStops(t *testing.T) {
	model := &scriptedModel{replies: []string{"I would rather chat."}}
	caller := &fakeCaller{}
	runner := NewRunner(model, caller, testLog())

	_, ok := runner.Run(context.Background(), "hello", testServer, testTools)
	assert.False(t, ok)
	assert.Empty(t, caller.calls)
}

func TestRunToolErrorStops(t *testing.T) {
	model := &scriptedModel{replies: []string{`{"toolName": "get_forecast", "args": {}}`}}
	caller := &fakeCaller{err: errors.New("connection refused")}
	runner := NewRunner(model, caller, testLog())

	block, ok := runner.Run(context.Background(), "weather?", testServer, testTools)
	assert.False(t, ok)
	assert.Empty(t, block)
}

func TestRunEmptyCatalogue(t *testing.T) {
	runner := NewRunner(&scriptedModel{}, &fakeCaller{}, testLog())
	_, ok := runner.Run(context.Background(), "hello", testServer, nil)
	assert.False(t, ok)
}

func TestRunFinalResultCapped(t *testing.T) {
	model := &scriptedModel{replies: []string{`{"toolName": "get_forecast", "args": {}}`}}
	caller := &fakeCaller{results: map[string]string{"get_forecast": strings.Repeat("x", finalResultCap+500)}}
	runner := NewRunner(model, caller, testLog())

	block, ok := runner.Run(context.Background(), "weather?", testServer, testTools)
	require.True(t, ok)
	assert.LessOrEqual(t, len(block), finalResultCap+200)
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	// "héllo": the é is two bytes, a cap of 2 falls in its middle.
	out := truncate("héllo", 2)
	assert.Equal(t, "h", out)
	assert.True(t, utf8.ValidString(out))

	long := strings.Repeat("日", 100)
	capped := truncate(long, 50)
	assert.True(t, utf8.ValidString(capped))
	assert.LessOrEqual(t, len(capped), 50)

	assert.Equal(t, "abc", truncate("abc", 10))
}

func TestRenderCatalogue(t *testing.T) {
	tools := []models.ToolDescriptor{
		{
			Name:        "get_forecast",
			Description: "forecast for a city id",
			InputSchema: &models.Schema{
				Type: "object",
				Properties: map[string]*models.Schema{
					"id":   {Type: "string", Description: "city id"},
					"days": {Type: "integer"},
				},
				Required: []string{"id"},
			},
		},
	}
	out := RenderCatalogue(tools)
	assert.Contains(t, out, "- get_forecast: forecast for a city id")
	assert.Contains(t, out, "id (string, required): city id")
	assert.Contains(t, out, "days (integer, optional)")
}
