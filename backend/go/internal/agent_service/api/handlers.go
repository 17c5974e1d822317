package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"Aivatar/backend/go/internal/agent_service/service"
	"Aivatar/backend/go/internal/agent_service/store"
	"Aivatar/backend/go/internal/models"
)

// Handler wires the HTTP endpoints to the chat and management services.
type Handler struct {
	chat   *service.Service
	manage *service.ManageService
}

func NewHandler(chat *service.Service, manage *service.ManageService) *Handler {
	return &Handler{chat: chat, manage: manage}
}

// ChatRequest is the body of POST /agents/:id/chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Chat runs one conversational turn with an agent.
func (h *Handler) Chat(c *gin.Context) {
	agentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	out, err := h.chat.Chat(c.Request.Context(), service.ChatInput{
		AgentID:  agentID,
		CallerID: callerID(c),
		Message:  req.Message,
		TraceID:  uuid.NewString(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// AgentRequest is the body for creating or updating an agent.
type AgentRequest struct {
	Name              string                   `json:"name" binding:"required"`
	AvatarURL         string                   `json:"avatar_url"`
	Visibility        models.Visibility        `json:"visibility"`
	Personality       string                   `json:"personality"`
	KnowledgeEnabled  *bool                    `json:"knowledge_enabled"`
	MCPEnabled        *bool                    `json:"mcp_enabled"`
	APIToolsEnabled   *bool                    `json:"api_tools_enabled"`
	WebSearchEnabled  *bool                    `json:"web_search_enabled"`
	SchedulingEnabled *bool                    `json:"scheduling_enabled"`
	WalletAddress     string                   `json:"wallet_address"`
	SessionPriceUSD   float64                  `json:"session_price_usd"`
	FreeSessions      bool                     `json:"free_sessions"`
	MCPServers        []models.MCPServerConfig `json:"mcp_servers"`
	APITools          []models.APIToolConfig   `json:"api_tools"`
}

func (r *AgentRequest) toModel() *models.Agent {
	return &models.Agent{
		Name:              r.Name,
		AvatarURL:         r.AvatarURL,
		Visibility:        r.Visibility,
		Personality:       r.Personality,
		KnowledgeEnabled:  r.KnowledgeEnabled,
		MCPEnabled:        r.MCPEnabled,
		APIToolsEnabled:   r.APIToolsEnabled,
		WebSearchEnabled:  r.WebSearchEnabled,
		SchedulingEnabled: r.SchedulingEnabled,
		WalletAddress:     r.WalletAddress,
		SessionPriceUSD:   r.SessionPriceUSD,
		FreeSessions:      r.FreeSessions,
		MCPServers:        r.MCPServers,
		APITools:          r.APITools,
	}
}

func (h *Handler) CreateAgent(c *gin.Context) {
	var req AgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	agent := req.toModel()
	if err := h.manage.CreateAgent(c.Request.Context(), callerID(c), agent); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": agent.ID})
}

func (h *Handler) UpdateAgent(c *gin.Context) {
	agentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.manage.UpdateAgent(c.Request.Context(), callerID(c), agentID, req.toModel()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": agentID})
}

func (h *Handler) GetAgent(c *gin.Context) {
	agentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	agent, err := h.manage.GetAgent(c.Request.Context(), callerID(c), agentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *Handler) History(c *gin.Context) {
	agentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	turns, err := h.manage.History(c.Request.Context(), callerID(c), agentID, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"turns": turns})
}

// WindowRequest is the body for availability window writes.
type WindowRequest struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Timezone  string `json:"timezone" binding:"required"`
	Active    *bool  `json:"active"`
}

func (h *Handler) ListWindows(c *gin.Context) {
	windows, err := h.manage.ListWindows(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

func (h *Handler) CreateWindow(c *gin.Context) {
	var req WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	window := &models.AvailabilityWindow{
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Timezone:  req.Timezone,
	}
	if err := h.manage.CreateWindow(c.Request.Context(), callerID(c), window); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": window.ID})
}

func (h *Handler) UpdateWindow(c *gin.Context) {
	windowID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	window := &models.AvailabilityWindow{
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Timezone:  req.Timezone,
		Active:    active,
	}
	window.ID = windowID
	if err := h.manage.UpdateWindow(c.Request.Context(), callerID(c), window); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": windowID})
}

func (h *Handler) DeleteWindow(c *gin.Context) {
	windowID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.manage.DeleteWindow(c.Request.Context(), callerID(c), windowID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": windowID})
}

// CalendarConnectRequest carries the OAuth tokens obtained by the client
// flow.
type CalendarConnectRequest struct {
	CalendarID   string    `json:"calendar_id"`
	AccessToken  string    `json:"access_token" binding:"required"`
	RefreshToken string    `json:"refresh_token" binding:"required"`
	TokenExpiry  time.Time `json:"token_expiry"`
}

func (h *Handler) ConnectCalendar(c *gin.Context) {
	var req CalendarConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	conn := &models.CalendarConnection{
		CalendarID:   req.CalendarID,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		TokenExpiry:  req.TokenExpiry,
	}
	if err := h.manage.ConnectCalendar(c.Request.Context(), callerID(c), conn); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true})
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// respondError maps service errors onto the HTTP status contract.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAgentNotFound), errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "agent not accessible"})
	case errors.Is(err, service.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "service not configured"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
