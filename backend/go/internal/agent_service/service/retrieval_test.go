package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"Aivatar/backend/go/internal/models"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f fakeEmbedder) Embed(context.Context, string) ([]float32, error) { return f.vec, f.err }
func (f fakeEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("not used")
}

type fakeVectors struct {
	chunks []models.ScoredChunk
	err    error
}

func (f fakeVectors) Search(context.Context, string, int, []float32) ([]models.ScoredChunk, error) {
	return f.chunks, f.err
}

func retrievalService(agents *fakeAgents, vectors VectorSearcher) *Service {
	svc := newTestService(agents, &fakeHistory{}, &fakeModel{reply: "ok"})
	svc.embedder = fakeEmbedder{vec: []float32{0.1, 0.2}}
	svc.vectors = vectors
	return svc
}

func TestKnowledgeContextThresholdFilter(t *testing.T) {
	agents := &fakeAgents{agent: testAgent()}
	svc := retrievalService(agents, fakeVectors{chunks: []models.ScoredChunk{
		{Text: "The hotel opened in 1912.", Score: 0.9},
		{Text: "Unrelated trivia.", Score: 0.3},
	}})

	got := svc.knowledgeContext(context.Background(), agents.agent, "when did the hotel open?")
	assert.Contains(t, got, "1912")
	assert.NotContains(t, got, "Unrelated trivia")
}

func TestKnowledgeContextFallbackFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head><title>House Rules</title></head><body><p>No smoking indoors.</p></body></html>"))
	}))
	defer server.Close()

	agents := &fakeAgents{agent: testAgent(), urls: []string{server.URL}}
	// Everything the index returns scores below the threshold.
	svc := retrievalService(agents, fakeVectors{chunks: []models.ScoredChunk{
		{Text: "weak match", Score: 0.1},
	}})

	got := svc.knowledgeContext(context.Background(), agents.agent, "can I smoke?")
	assert.Contains(t, got, "House Rules")
	assert.Contains(t, got, "No smoking indoors.")
	assert.NotContains(t, got, "<p>")
	assert.Equal(t, maxFallbackURLs, agents.urlLimit)
}

func TestKnowledgeContextFallbackPerURLCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>" + strings.Repeat("a", fallbackCharCap*3) + "</p></body></html>"))
	}))
	defer server.Close()

	agents := &fakeAgents{agent: testAgent(), urls: []string{server.URL}}
	svc := retrievalService(agents, fakeVectors{})

	got := svc.knowledgeContext(context.Background(), agents.agent, "tell me everything")
	assert.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), fallbackCharCap)
}

func TestKnowledgeContextFallbackURLBound(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("<html><body>page</body></html>"))
	}))
	defer server.Close()

	// A store handing back more than the bound must not widen the fetch.
	urls := []string{server.URL, server.URL, server.URL, server.URL, server.URL}
	agents := &fakeAgents{agent: testAgent(), urls: urls}
	svc := retrievalService(agents, fakeVectors{})

	got := svc.knowledgeContext(context.Background(), agents.agent, "hello")
	assert.NotEmpty(t, got)
	assert.EqualValues(t, maxFallbackURLs, atomic.LoadInt32(&hits))
}

func TestKnowledgeContextSearchFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>fallback page</body></html>"))
	}))
	defer server.Close()

	agents := &fakeAgents{agent: testAgent(), urls: []string{server.URL}}
	svc := retrievalService(agents, fakeVectors{err: errors.New("milvus down")})

	got := svc.knowledgeContext(context.Background(), agents.agent, "hello")
	assert.Contains(t, got, "fallback page")
}

func TestKnowledgeContextFetchFailureIsSoft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	agents := &fakeAgents{agent: testAgent(), urls: []string{server.URL}}
	svc := retrievalService(agents, fakeVectors{})

	got := svc.knowledgeContext(context.Background(), agents.agent, "hello")
	assert.Empty(t, got)
}

func TestKnowledgeContextNothingAvailable(t *testing.T) {
	agents := &fakeAgents{agent: testAgent()}
	svc := retrievalService(agents, fakeVectors{})
	assert.Empty(t, svc.knowledgeContext(context.Background(), agents.agent, "hello"))
}
