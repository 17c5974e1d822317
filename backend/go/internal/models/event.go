package models

import "time"

// ChatEvent is the analytics record published to Kafka after each completed
// chat request. Publishing is fire-and-forget.
type ChatEvent struct {
	TraceID        string    `json:"trace_id"`
	AgentID        uint      `json:"agent_id"`
	CallerID       uint      `json:"caller_id"`
	LatencyMS      int64     `json:"latency_ms"`
	KnowledgeUsed  bool      `json:"knowledge_used"`
	MCPToolsUsed   bool      `json:"mcp_tools_used"`
	APIToolsUsed   bool      `json:"api_tools_used"`
	SchedulingUsed bool      `json:"scheduling_used"`
	CreatedAt      time.Time `json:"created_at"`
}
