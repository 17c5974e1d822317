package models

import "gorm.io/gorm"

// KnowledgeStatus tracks whether a knowledge URL has been chunked and indexed.
type KnowledgeStatus string

const (
	KnowledgePending KnowledgeStatus = "pending"
	KnowledgeIndexed KnowledgeStatus = "indexed"
	KnowledgeFailed  KnowledgeStatus = "failed"
)

// KnowledgeItem is a source URL attached to an agent's knowledge base.
// Indexing happens out of band; pending items are used as a live-fetch
// fallback when vector retrieval comes back empty.
type KnowledgeItem struct {
	gorm.Model

	AgentID uint            `gorm:"index;not null"`
	URL     string          `gorm:"size:2048;not null"`
	Title   string          `gorm:"size:512"`
	Status  KnowledgeStatus `gorm:"type:varchar(20);default:'pending';not null"`
}

func (KnowledgeItem) TableName() string {
	return "knowledge_items"
}

// ScoredChunk is one retrieved knowledge snippet with its similarity score.
type ScoredChunk struct {
	Text  string
	Score float32
}
