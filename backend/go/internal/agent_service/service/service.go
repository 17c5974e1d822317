// Package service implements the conversational pipeline: knowledge
// retrieval, live tool execution, availability computation, context
// assembly and the final model call.
package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"Aivatar/backend/go/internal/models"
	"Aivatar/backend/go/pkg/logger"

	"Aivatar/backend/go/internal/embedding"
	"Aivatar/backend/go/internal/llm"
)

var (
	// ErrAgentNotFound maps to a 404 at the API layer.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrForbidden maps to a 403: the caller may not talk to this agent.
	ErrForbidden = errors.New("agent not accessible to caller")
	// ErrNotConfigured maps to a 500: no language model is available.
	ErrNotConfigured = errors.New("language model not configured")
)

// AgentReader is the relational read surface the pipeline needs.
type AgentReader interface {
	AgentByID(ctx context.Context, id uint) (*models.Agent, error)
	Windows(ctx context.Context, ownerID uint) ([]models.AvailabilityWindow, error)
	CalendarConnection(ctx context.Context, ownerID uint) (*models.CalendarConnection, error)
	PendingKnowledgeURLs(ctx context.Context, agentID uint, limit int) ([]string, error)
}

// ConversationLog persists and replays turn history.
type ConversationLog interface {
	History(ctx context.Context, agentID, callerID uint, limit int64) ([]models.ConversationTurn, error)
	Append(ctx context.Context, turns ...*models.ConversationTurn) error
}

// VectorSearcher runs a similarity search over an agent's indexed chunks.
type VectorSearcher interface {
	Search(ctx context.Context, agentID string, topK int, vector []float32) ([]models.ScoredChunk, error)
}

// ToolDiscovery lists the tools an MCP server exposes, through the cache.
type ToolDiscovery interface {
	Tools(ctx context.Context, endpoint string, headers map[string]string) []models.ToolDescriptor
}

// ToolSelector drives the bounded select-invoke loop against one server.
type ToolSelector interface {
	Run(ctx context.Context, message string, server models.MCPServerConfig, tools []models.ToolDescriptor) (string, bool)
}

// APIInvoker gates and executes one configured HTTP tool.
type APIInvoker interface {
	MaybeInvoke(ctx context.Context, tool models.APIToolConfig, message string) (string, bool)
}

// BusySource reports externally booked intervals from a connected calendar.
type BusySource interface {
	BusyPeriods(ctx context.Context, conn *models.CalendarConnection, from, to time.Time) ([]models.BusyPeriod, error)
}

// FriendChecker answers whether two users are connected. A nil checker
// makes friends-visible agents reachable by their owner only.
type FriendChecker interface {
	AreFriends(ctx context.Context, ownerID, callerID uint) (bool, error)
}

// EventPublisher emits the per-chat analytics record.
type EventPublisher interface {
	Publish(ctx context.Context, event *models.ChatEvent) error
}

// Deps carries everything a Service needs. Model is the only hard
// requirement at chat time; every other collaborator degrades to a
// skipped stage when nil.
type Deps struct {
	Agents        AgentReader
	Conversations ConversationLog
	Embedder      embedding.Embedding
	Vectors       VectorSearcher
	Model         llm.LLM
	Discovery     ToolDiscovery
	Selector      ToolSelector
	Invoker       APIInvoker
	Calendar      BusySource
	Friends       FriendChecker
	Events        EventPublisher
	Logger        *logger.Logger
}

type Service struct {
	agents    AgentReader
	history   ConversationLog
	embedder  embedding.Embedding
	vectors   VectorSearcher
	model     llm.LLM
	discovery ToolDiscovery
	selector  ToolSelector
	invoker   APIInvoker
	calendar  BusySource
	friends   FriendChecker
	events    EventPublisher
	web       *http.Client
	now       func() time.Time
	log       *logger.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		agents:    d.Agents,
		history:   d.Conversations,
		embedder:  d.Embedder,
		vectors:   d.Vectors,
		model:     d.Model,
		discovery: d.Discovery,
		selector:  d.Selector,
		invoker:   d.Invoker,
		calendar:  d.Calendar,
		friends:   d.Friends,
		events:    d.Events,
		web:       &http.Client{Timeout: urlFetchTimeout},
		now:       time.Now,
		log:       d.Logger,
	}
}
