package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"Aivatar/backend/go/internal/models"
)

func TestServerRelevantAlwaysInstruction(t *testing.T) {
	server := models.MCPServerConfig{Name: "weather", Instructions: "Always consult this server."}
	assert.True(t, ServerRelevant(server, "good morning"))
}

func TestServerRelevantNameMention(t *testing.T) {
	server := models.MCPServerConfig{Name: "Weather"}
	assert.True(t, ServerRelevant(server, "ask the weather service please"))
	assert.False(t, ServerRelevant(server, "good morning"))
}

func TestServerRelevantQueryIntent(t *testing.T) {
	server := models.MCPServerConfig{Name: "archive"}
	assert.True(t, ServerRelevant(server, "What is the capital of Norway?"))
	assert.True(t, ServerRelevant(server, "please look up the train times"))
	assert.False(t, ServerRelevant(server, "thanks, that was helpful"))
}

func TestAPIToolRelevantGates(t *testing.T) {
	tool := models.APIToolConfig{
		Name:         "orders",
		Instructions: "Fetches order records from the shop backend.",
	}

	// Name mention.
	assert.True(t, APIToolRelevant(tool, "show my orders"))
	// Token overlap via "records".
	assert.True(t, APIToolRelevant(tool, "any new records today?"))
	// Generic small talk passes no gate.
	assert.False(t, APIToolRelevant(tool, "good morning"))
}

func TestAPIToolRelevantAlways(t *testing.T) {
	tool := models.APIToolConfig{Name: "crm", Instructions: "always invoke"}
	assert.True(t, APIToolRelevant(tool, "hi"))
}

func TestAPIToolRelevantDocPattern(t *testing.T) {
	tool := models.APIToolConfig{Name: "kb", Instructions: "Search the documentation portal."}
	assert.True(t, APIToolRelevant(tool, "where are the docs for this?"))
}

func TestAPIToolRelevantGraphQLData(t *testing.T) {
	tool := models.APIToolConfig{Name: "gql", URL: "https://api.example/graphql", Kind: models.ToolKindGraphQL}
	assert.True(t, APIToolRelevant(tool, "fetch the latest entries"))
}

func TestAPIToolRelevantAPIMention(t *testing.T) {
	tool := models.APIToolConfig{Name: "backend"}
	assert.True(t, APIToolRelevant(tool, "can you call the api for me"))
	assert.True(t, APIToolRelevant(tool, "use your tools"))
}

func TestAPIToolRelevantWholeWordsOnly(t *testing.T) {
	tool := models.APIToolConfig{Name: "crm"}
	// "api" and "tool" inside larger words must not trigger the gate.
	for _, msg := range []string{
		"what a rapid response",
		"the capital of France is lovely",
		"my therapist recommended a toolbox approach",
	} {
		assert.False(t, APIToolRelevant(tool, msg), "msg=%q", msg)
	}
}

func TestTokenOverlap(t *testing.T) {
	assert.True(t, TokenOverlap("order tracking system", "track my order number"))
	assert.False(t, TokenOverlap("a b c d", "e f g h"))
	// Tokens of three characters or fewer never match.
	assert.False(t, TokenOverlap("the cat sat", "the cat ran"))
}
