package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"Aivatar/backend/go/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// AgentStore persists agents and their scheduling configuration in MySQL.
type AgentStore struct {
	db *gorm.DB
}

func NewAgentStore(db *gorm.DB) *AgentStore {
	return &AgentStore{db: db}
}

// AutoMigrate creates or updates the relational schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Agent{},
		&models.MCPServerConfig{},
		&models.APIToolConfig{},
		&models.AvailabilityWindow{},
		&models.CalendarConnection{},
		&models.KnowledgeItem{},
	)
}

// AgentByID loads an agent together with its tool configuration.
func (s *AgentStore) AgentByID(ctx context.Context, id uint) (*models.Agent, error) {
	var agent models.Agent
	err := s.db.WithContext(ctx).
		Preload("MCPServers").
		Preload("APITools").
		First(&agent, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (s *AgentStore) CreateAgent(ctx context.Context, agent *models.Agent) error {
	for i := range agent.APITools {
		if err := agent.APITools[i].Validate(); err != nil {
			return err
		}
	}
	return s.db.WithContext(ctx).Create(agent).Error
}

func (s *AgentStore) UpdateAgent(ctx context.Context, agent *models.Agent) error {
	for i := range agent.APITools {
		if err := agent.APITools[i].Validate(); err != nil {
			return err
		}
	}
	// Save would overwrite created_at with the incoming zero value.
	var existing models.Agent
	err := s.db.WithContext(ctx).Select("created_at").First(&existing, agent.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	agent.CreatedAt = existing.CreatedAt
	return s.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(agent).Error
}

// Windows returns the owner's active availability windows.
func (s *AgentStore) Windows(ctx context.Context, ownerID uint) ([]models.AvailabilityWindow, error) {
	var windows []models.AvailabilityWindow
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND active = ?", ownerID, true).
		Order("day_of_week, start_time").
		Find(&windows).Error
	return windows, err
}

func (s *AgentStore) CreateWindow(ctx context.Context, w *models.AvailabilityWindow) error {
	if err := w.Validate(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(w).Error
}

func (s *AgentStore) UpdateWindow(ctx context.Context, w *models.AvailabilityWindow) error {
	if err := w.Validate(); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Model(&models.AvailabilityWindow{}).
		Where("id = ? AND owner_id = ?", w.ID, w.OwnerID).
		Updates(map[string]interface{}{
			"day_of_week": w.DayOfWeek,
			"start_time":  w.StartTime,
			"end_time":    w.EndTime,
			"timezone":    w.Timezone,
			"active":      w.Active,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AgentStore) DeleteWindow(ctx context.Context, ownerID, windowID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", windowID, ownerID).
		Delete(&models.AvailabilityWindow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CalendarConnection returns the owner's active calendar link, or nil when
// no calendar has been connected.
func (s *AgentStore) CalendarConnection(ctx context.Context, ownerID uint) (*models.CalendarConnection, error) {
	var conn models.CalendarConnection
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND active = ?", ownerID, true).
		First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// SaveCalendarConnection upserts the per-owner calendar link. It also
// satisfies calendar.TokenStore so refreshed tokens are written back.
func (s *AgentStore) SaveCalendarConnection(ctx context.Context, conn *models.CalendarConnection) error {
	var existing models.CalendarConnection
	err := s.db.WithContext(ctx).Where("owner_id = ?", conn.OwnerID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.WithContext(ctx).Create(conn).Error
	}
	if err != nil {
		return err
	}
	conn.ID = existing.ID
	return s.db.WithContext(ctx).Save(conn).Error
}

// PendingKnowledgeURLs returns up to limit source URLs that have not been
// indexed yet, oldest first.
func (s *AgentStore) PendingKnowledgeURLs(ctx context.Context, agentID uint, limit int) ([]string, error) {
	var urls []string
	err := s.db.WithContext(ctx).
		Model(&models.KnowledgeItem{}).
		Where("agent_id = ? AND status = ?", agentID, models.KnowledgePending).
		Order("created_at").
		Limit(limit).
		Pluck("url", &urls).Error
	return urls, err
}
