// Package relevance holds the pure gating heuristics that decide whether a
// tool server or a configured API tool is worth engaging for a message.
// The functions are deliberately decoupled from any network code so the
// heuristics can be tested and tuned in isolation.
package relevance

import (
	"strings"
	"unicode"

	"Aivatar/backend/go/internal/models"
)

// queryIntentPhrases are common "the user wants information" markers.
var queryIntentPhrases = []string{
	"how to", "how do", "how can",
	"what is", "what are", "what's",
	"who is", "where is", "when is",
	"search", "find", "look up", "lookup",
	"tell me", "show me", "explain",
}

// docQueryPhrases mark documentation-style questions.
var docQueryPhrases = []string{
	"docs", "documentation", "reference", "guide", "tutorial", "example",
}

// dataQueryPhrases mark structured data requests.
var dataQueryPhrases = []string{
	"query", "fetch", "data", "records", "list all", "get all",
}

// ServerRelevant reports whether a tool server should be engaged for the
// message: explicit always-on instructions, a literal name mention, or
// general query intent.
func ServerRelevant(server models.MCPServerConfig, message string) bool {
	lowerMsg := strings.ToLower(message)
	if strings.Contains(strings.ToLower(server.Instructions), "always") {
		return true
	}
	if name := strings.ToLower(strings.TrimSpace(server.Name)); name != "" && strings.Contains(lowerMsg, name) {
		return true
	}
	return containsAny(lowerMsg, queryIntentPhrases)
}

// APIToolRelevant reports whether a configured API tool should be invoked
// for the message. The tool is skipped unless at least one gate passes.
func APIToolRelevant(tool models.APIToolConfig, message string) bool {
	lowerMsg := strings.ToLower(message)
	metadata := strings.ToLower(tool.Name + " " + tool.Instructions + " " + tool.SchemaText)

	if strings.Contains(strings.ToLower(tool.Instructions), "always") {
		return true
	}
	if name := strings.ToLower(strings.TrimSpace(tool.Name)); name != "" && strings.Contains(lowerMsg, name) {
		return true
	}
	if TokenOverlap(metadata, lowerMsg) {
		return true
	}
	if containsAny(lowerMsg, docQueryPhrases) && containsAny(metadata, docQueryPhrases) {
		return true
	}
	if containsAny(lowerMsg, dataQueryPhrases) && isGraphQLFlavored(tool) {
		return true
	}
	if hasWord(lowerMsg, "api") || hasWord(lowerMsg, "tool") || hasWord(lowerMsg, "tools") {
		return true
	}
	return false
}

// hasWord reports whether word appears as a whole token. A plain substring
// match over-triggers ("api" inside "capital", "tool" inside "toolbox").
func hasWord(text, word string) bool {
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if field == word {
			return true
		}
	}
	return false
}

// TokenOverlap reports whether the two texts share any token longer than
// three characters.
func TokenOverlap(a, b string) bool {
	tokensA := tokenize(a)
	if len(tokensA) == 0 {
		return false
	}
	for token := range tokenize(b) {
		if _, ok := tokensA[token]; ok {
			return true
		}
	}
	return false
}

func isGraphQLFlavored(tool models.APIToolConfig) bool {
	if tool.Kind == models.ToolKindGraphQL {
		return true
	}
	lower := strings.ToLower(tool.Name + " " + tool.URL + " " + tool.Instructions)
	return strings.Contains(lower, "graphql")
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// tokenize splits on non-alphanumeric runes and keeps lowercase tokens
// longer than three characters.
func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(field) > 3 {
			tokens[field] = struct{}{}
		}
	}
	return tokens
}
