package service

import (
	"context"
	"errors"

	"Aivatar/backend/go/internal/agent_service/store"
	"Aivatar/backend/go/internal/models"
	"Aivatar/backend/go/pkg/logger"
)

// ManageService owns the configuration surfaces: agent CRUD, availability
// windows, calendar connections and history reads. It talks to the
// relational store directly since every operation is a thin guarded write.
type ManageService struct {
	agents  *store.AgentStore
	history ConversationLog
	log     *logger.Logger
}

func NewManageService(agents *store.AgentStore, history ConversationLog, log *logger.Logger) *ManageService {
	return &ManageService{agents: agents, history: history, log: log}
}

func (m *ManageService) CreateAgent(ctx context.Context, ownerID uint, agent *models.Agent) error {
	agent.OwnerID = ownerID
	if agent.Visibility == "" {
		agent.Visibility = models.VisibilityPrivate
	}
	return m.agents.CreateAgent(ctx, agent)
}

func (m *ManageService) UpdateAgent(ctx context.Context, ownerID, agentID uint, agent *models.Agent) error {
	existing, err := m.agents.AgentByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAgentNotFound
		}
		return err
	}
	if existing.OwnerID != ownerID {
		return ErrForbidden
	}
	agent.ID = agentID
	agent.OwnerID = ownerID
	return m.agents.UpdateAgent(ctx, agent)
}

// GetAgent returns the full record for the owner and a trimmed public
// profile for everyone else. Private agents stay invisible to non-owners.
func (m *ManageService) GetAgent(ctx context.Context, callerID, agentID uint) (*models.Agent, error) {
	agent, err := m.agents.AgentByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	if agent.OwnerID == callerID {
		return agent, nil
	}
	if agent.Visibility == models.VisibilityPrivate {
		return nil, ErrAgentNotFound
	}
	return &models.Agent{
		Model:           agent.Model,
		OwnerID:         agent.OwnerID,
		Name:            agent.Name,
		AvatarURL:       agent.AvatarURL,
		Visibility:      agent.Visibility,
		Personality:     agent.Personality,
		SessionPriceUSD: agent.SessionPriceUSD,
		FreeSessions:    agent.FreeSessions,
	}, nil
}

// History returns the caller's own exchange with the agent, oldest first.
func (m *ManageService) History(ctx context.Context, callerID, agentID uint, limit int64) ([]models.ConversationTurn, error) {
	if _, err := m.agents.AgentByID(ctx, agentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return m.history.History(ctx, agentID, callerID, limit)
}

func (m *ManageService) ListWindows(ctx context.Context, ownerID uint) ([]models.AvailabilityWindow, error) {
	return m.agents.Windows(ctx, ownerID)
}

func (m *ManageService) CreateWindow(ctx context.Context, ownerID uint, w *models.AvailabilityWindow) error {
	w.OwnerID = ownerID
	w.Active = true
	return m.agents.CreateWindow(ctx, w)
}

func (m *ManageService) UpdateWindow(ctx context.Context, ownerID uint, w *models.AvailabilityWindow) error {
	w.OwnerID = ownerID
	return m.agents.UpdateWindow(ctx, w)
}

func (m *ManageService) DeleteWindow(ctx context.Context, ownerID, windowID uint) error {
	return m.agents.DeleteWindow(ctx, ownerID, windowID)
}

// ConnectCalendar stores or replaces the owner's calendar link.
func (m *ManageService) ConnectCalendar(ctx context.Context, ownerID uint, conn *models.CalendarConnection) error {
	conn.OwnerID = ownerID
	conn.Active = true
	if conn.CalendarID == "" {
		conn.CalendarID = "primary"
	}
	return m.agents.SaveCalendarConnection(ctx, conn)
}
