package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"Aivatar/backend/go/internal/agent_service/store"
	"Aivatar/backend/go/internal/llm"
	"Aivatar/backend/go/internal/models"
)

const (
	historyLimit        = 40
	replyMaxTokens      = 1024
	eventPublishTimeout = 5 * time.Second
)

// ChatInput is one turn from a caller addressed to an agent.
type ChatInput struct {
	AgentID  uint
	CallerID uint
	Message  string
	TraceID  string
}

// SchedulingView is the booking payload shown alongside the reply. Its
// slots are the calendar-filtered set; the model never sees this view.
type SchedulingView struct {
	SlotsByDate     map[string][]models.Slot `json:"slots_by_date"`
	WalletAddress   string                   `json:"wallet_address,omitempty"`
	SessionPriceUSD float64                  `json:"session_price_usd,omitempty"`
	FreeSessions    bool                     `json:"free_sessions"`
}

type ChatOutput struct {
	Reply      string          `json:"reply"`
	AgentName  string          `json:"agent_name"`
	AvatarURL  string          `json:"avatar_url,omitempty"`
	OwnerID    uint            `json:"owner_id"`
	Scheduling *SchedulingView `json:"scheduling,omitempty"`
}

// Chat runs the full pipeline for one message. Only three failures are
// fatal: a missing model, an unresolvable agent and a failed generation.
// Every enrichment stage degrades to an absent context block.
func (s *Service) Chat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	start := s.now()
	if s.model == nil {
		return nil, ErrNotConfigured
	}

	agent, err := s.agents.AgentByID(ctx, in.AgentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, fmt.Errorf("loading agent %d: %w", in.AgentID, err)
	}
	if err := s.authorize(ctx, agent, in.CallerID); err != nil {
		return nil, err
	}

	var parts contextParts
	parts.Personality = agent.Personality

	if agent.KnowledgeOn() {
		parts.Knowledge = s.knowledgeContext(ctx, agent, in.Message)
	}
	if agent.MCPOn() {
		parts.ToolBlocks = s.mcpContext(ctx, agent, in.Message)
	}
	if agent.APIToolsOn() {
		parts.APIBlocks = s.apiToolContext(ctx, agent, in.Message)
	}

	var view *SchedulingView
	if agent.SchedulingOn() {
		var modelSlots []models.Slot
		modelSlots, view = s.schedulingViews(ctx, agent, start)
		parts.Scheduling = describeAvailability(modelSlots)
	}

	history, err := s.history.History(ctx, agent.ID, in.CallerID, historyLimit)
	if err != nil {
		s.log.WithError(err).Warn("history load failed, replying without it")
		history = nil
	}

	reply, err := s.model.Chat(ctx, &llm.ChatRequest{
		SystemInstruction: buildInstruction(parts),
		History:           history,
		Message:           in.Message,
		MaxOutputTokens:   replyMaxTokens,
		WebSearch:         agent.WebSearchOn(),
	})
	if err != nil {
		return nil, fmt.Errorf("generating reply: %w", err)
	}

	s.persistTurns(ctx, agent.ID, in.CallerID, in.Message, reply)
	s.publishEvent(in, agent, parts, view, start)

	return &ChatOutput{
		Reply:      reply,
		AgentName:  agent.Name,
		AvatarURL:  agent.AvatarURL,
		OwnerID:    agent.OwnerID,
		Scheduling: view,
	}, nil
}

func (s *Service) authorize(ctx context.Context, agent *models.Agent, callerID uint) error {
	if callerID == agent.OwnerID {
		return nil
	}
	switch agent.Visibility {
	case models.VisibilityPublic:
		return nil
	case models.VisibilityFriends:
		if s.friends == nil {
			return ErrForbidden
		}
		ok, err := s.friends.AreFriends(ctx, agent.OwnerID, callerID)
		if err != nil {
			s.log.WithError(err).Warn("friend lookup failed, denying access")
			return ErrForbidden
		}
		if !ok {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

func (s *Service) persistTurns(ctx context.Context, agentID, callerID uint, message, reply string) {
	now := s.now().UTC()
	err := s.history.Append(ctx,
		&models.ConversationTurn{
			ID:        uuid.NewString(),
			AgentID:   agentID,
			CallerID:  callerID,
			Role:      models.RoleUser,
			Content:   message,
			CreatedAt: now,
		},
		&models.ConversationTurn{
			ID:        uuid.NewString(),
			AgentID:   agentID,
			CallerID:  callerID,
			Role:      models.RoleAssistant,
			Content:   reply,
			CreatedAt: now.Add(time.Millisecond),
		},
	)
	if err != nil {
		s.log.WithError(err).Error("persisting conversation turns failed")
	}
}

func (s *Service) publishEvent(in ChatInput, agent *models.Agent, parts contextParts, view *SchedulingView, start time.Time) {
	if s.events == nil {
		return
	}
	event := &models.ChatEvent{
		TraceID:        in.TraceID,
		AgentID:        agent.ID,
		CallerID:       in.CallerID,
		LatencyMS:      s.now().Sub(start).Milliseconds(),
		KnowledgeUsed:  parts.Knowledge != "",
		MCPToolsUsed:   len(parts.ToolBlocks) > 0,
		APIToolsUsed:   len(parts.APIBlocks) > 0,
		SchedulingUsed: view != nil,
		CreatedAt:      s.now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
		defer cancel()
		if err := s.events.Publish(ctx, event); err != nil {
			s.log.WithError(err).Warn("chat event publish failed")
		}
	}()
}
