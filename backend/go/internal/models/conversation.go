package models

import "time"

// SpeakerRole identifies who produced a conversation turn.
type SpeakerRole string

const (
	RoleUser      SpeakerRole = "user"
	RoleAssistant SpeakerRole = "assistant"
)

// ConversationTurn is one append-only message in the (agent, caller) history,
// stored as a MongoDB document and ordered by creation time.
type ConversationTurn struct {
	ID        string      `bson:"_id,omitempty" json:"id"`
	AgentID   uint        `bson:"agent_id" json:"agentId"`
	CallerID  uint        `bson:"caller_id" json:"callerId"`
	Role      SpeakerRole `bson:"role" json:"role"`
	Content   string      `bson:"content" json:"content"`
	CreatedAt time.Time   `bson:"created_at" json:"createdAt"`
}
