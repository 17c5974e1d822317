package store

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"Aivatar/backend/go/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestUpdateAgentPreservesCreatedAt(t *testing.T) {
	db := newTestDB(t)
	s := NewAgentStore(db)
	ctx := context.Background()

	agent := &models.Agent{OwnerID: 1, Name: "Coach", Visibility: models.VisibilityPrivate}
	require.NoError(t, s.CreateAgent(ctx, agent))

	var original models.Agent
	require.NoError(t, db.First(&original, agent.ID).Error)
	require.False(t, original.CreatedAt.IsZero())

	// An update payload arrives without timestamps, as it does over HTTP.
	updated := &models.Agent{OwnerID: 1, Name: "Mentor", Visibility: models.VisibilityPublic}
	updated.ID = agent.ID
	require.NoError(t, s.UpdateAgent(ctx, updated))

	reloaded, err := s.AgentByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mentor", reloaded.Name)
	assert.Equal(t, models.VisibilityPublic, reloaded.Visibility)
	assert.False(t, reloaded.CreatedAt.IsZero())
	assert.WithinDuration(t, original.CreatedAt, reloaded.CreatedAt, time.Second)
}

func TestUpdateAgentUnknown(t *testing.T) {
	s := NewAgentStore(newTestDB(t))
	missing := &models.Agent{OwnerID: 1, Name: "ghost"}
	missing.ID = 404
	assert.ErrorIs(t, s.UpdateAgent(context.Background(), missing), ErrNotFound)
}

func TestAgentByIDNotFound(t *testing.T) {
	s := NewAgentStore(newTestDB(t))
	_, err := s.AgentByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveCalendarConnectionUpserts(t *testing.T) {
	db := newTestDB(t)
	s := NewAgentStore(db)
	ctx := context.Background()

	first := &models.CalendarConnection{OwnerID: 7, AccessToken: "a1", RefreshToken: "r1", Active: true}
	require.NoError(t, s.SaveCalendarConnection(ctx, first))

	second := &models.CalendarConnection{OwnerID: 7, AccessToken: "a2", RefreshToken: "r1", Active: true}
	require.NoError(t, s.SaveCalendarConnection(ctx, second))

	var count int64
	require.NoError(t, db.Model(&models.CalendarConnection{}).Where("owner_id = ?", 7).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	conn, err := s.CalendarConnection(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, conn)
	assert.Equal(t, "a2", conn.AccessToken)
}

func TestPendingKnowledgeURLsLimit(t *testing.T) {
	db := newTestDB(t)
	s := NewAgentStore(db)
	ctx := context.Background()

	for _, item := range []models.KnowledgeItem{
		{AgentID: 1, URL: "http://a", Status: models.KnowledgePending},
		{AgentID: 1, URL: "http://b", Status: models.KnowledgePending},
		{AgentID: 1, URL: "http://c", Status: models.KnowledgeIndexed},
		{AgentID: 2, URL: "http://d", Status: models.KnowledgePending},
	} {
		item := item
		require.NoError(t, db.Create(&item).Error)
	}

	urls, err := s.PendingKnowledgeURLs(ctx, 1, 3)
	require.NoError(t, err)
	// Indexed items and other agents' items are excluded.
	assert.ElementsMatch(t, []string{"http://a", "http://b"}, urls)

	one, err := s.PendingKnowledgeURLs(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}
