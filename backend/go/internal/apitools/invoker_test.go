package apitools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"Aivatar/backend/go/internal/llm"
	"Aivatar/backend/go/internal/models"
	"Aivatar/backend/go/pkg/logger"
)

type stubModel struct {
	text string
	err  error
}

func (m stubModel) GenerateText(context.Context, string) (string, error) { return m.text, m.err }
func (m stubModel) Chat(context.Context, *llm.ChatRequest) (string, error) {
	return m.text, m.err
}

func newTestInvoker(model llm.LLM) *Invoker {
	return NewInvoker(model, logger.New("test", "", ""))
}

func TestMaybeInvokeGetRequest(t *testing.T) {
	var gotQuery, gotAuth, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotAuth = r.Header.Get("Authorization")
		gotCustom = r.Header.Get("X-Team")
		w.Write([]byte("three open orders"))
	}))
	defer server.Close()

	tool := models.APIToolConfig{
		Name:    "orders",
		URL:     server.URL,
		Method:  "GET",
		APIKey:  "secret",
		Headers: datatypes.JSONMap{"X -Te am:": "ops"},
	}

	block, ok := newTestInvoker(stubModel{}).MaybeInvoke(context.Background(), tool, "show my orders")
	require.True(t, ok)
	assert.Contains(t, block, "three open orders")
	assert.Equal(t, "show my orders", gotQuery)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "ops", gotCustom)
}

func TestMaybeInvokeExplicitAuthHeaderWins(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	tool := models.APIToolConfig{
		Name:    "orders",
		URL:     server.URL,
		Method:  "GET",
		APIKey:  "unused",
		Headers: datatypes.JSONMap{"Authorization": "Token abc"},
	}

	_, ok := newTestInvoker(stubModel{}).MaybeInvoke(context.Background(), tool, "my orders please")
	require.True(t, ok)
	assert.Equal(t, "Token abc", gotAuth)
}

func TestMaybeInvokeGenericPostEnvelope(t *testing.T) {
	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte("done"))
	}))
	defer server.Close()

	tool := models.APIToolConfig{Name: "orders", URL: server.URL, Method: "POST"}
	message := "list my orders"

	_, ok := newTestInvoker(stubModel{}).MaybeInvoke(context.Background(), tool, message)
	require.True(t, ok)
	assert.Equal(t, message, body["query"])
	assert.Equal(t, message, body["message"])
	assert.Equal(t, message, body["text"])
}

func TestMaybeInvokeGraphQLBody(t *testing.T) {
	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"data": {}}`))
	}))
	defer server.Close()

	tool := models.APIToolConfig{
		Name:   "orders",
		URL:    server.URL,
		Method: "POST",
		Kind:   models.ToolKindGraphQL,
	}
	model := stubModel{text: "```graphql\nquery { orders { id } }\n```"}

	_, ok := newTestInvoker(model).MaybeInvoke(context.Background(), tool, "fetch my orders")
	require.True(t, ok)
	assert.Equal(t, "query { orders { id } }", body["query"])
}

func TestMaybeInvokeNon2xxDiagnostic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("e", failureBodyCap+500)))
	}))
	defer server.Close()

	tool := models.APIToolConfig{Name: "orders", URL: server.URL, Method: "GET"}

	block, ok := newTestInvoker(stubModel{}).MaybeInvoke(context.Background(), tool, "my orders")
	require.True(t, ok)
	assert.Contains(t, block, "status 502")
	assert.LessOrEqual(t, len(block), failureBodyCap+100)
}

func TestMaybeInvokeTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	tool := models.APIToolConfig{Name: "orders", URL: server.URL, Method: "GET"}

	block, ok := newTestInvoker(stubModel{}).MaybeInvoke(context.Background(), tool, "my orders")
	require.True(t, ok)
	assert.Contains(t, block, "[error calling tool orders")
}

func TestMaybeInvokeGateRejects(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	tool := models.APIToolConfig{Name: "orders", URL: server.URL, Method: "GET"}

	block, ok := newTestInvoker(stubModel{}).MaybeInvoke(context.Background(), tool, "good morning")
	assert.False(t, ok)
	assert.Empty(t, block)
	assert.False(t, called)
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	out := truncate("héllo", 2)
	assert.Equal(t, "h", out)
	assert.True(t, utf8.ValidString(out))

	capped := truncate(strings.Repeat("é", failureBodyCap), failureBodyCap-1)
	assert.True(t, utf8.ValidString(capped))
}

func TestMaybeInvokeSuccessBodyCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", successBodyCap+5000)))
	}))
	defer server.Close()

	tool := models.APIToolConfig{Name: "orders", URL: server.URL, Method: "GET"}

	block, ok := newTestInvoker(stubModel{}).MaybeInvoke(context.Background(), tool, "my orders")
	require.True(t, ok)
	assert.LessOrEqual(t, len(block), successBodyCap+100)
}
