package models

import (
	"fmt"
	"net/url"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Visibility controls who may talk to an agent.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityFriends Visibility = "friends"
	VisibilityPublic  Visibility = "public"
)

// Agent is a stored conversational persona. Capability flags default to
// enabled; a nil flag column reads back as true so freshly migrated rows
// keep their full capability set.
type Agent struct {
	gorm.Model

	OwnerID    uint       `gorm:"index;not null"`
	Name       string     `gorm:"size:255;not null"`
	AvatarURL  string     `gorm:"size:1024"`
	Visibility Visibility `gorm:"type:varchar(20);default:'private';not null"`

	// Personality is the free-text system instruction describing the persona.
	Personality string `gorm:"type:text"`

	KnowledgeEnabled  *bool `gorm:"default:true"`
	MCPEnabled        *bool `gorm:"default:true"`
	APIToolsEnabled   *bool `gorm:"default:true"`
	WebSearchEnabled  *bool `gorm:"default:true"`
	SchedulingEnabled *bool `gorm:"default:true"`

	// Booking/payment display config, surfaced in the scheduling payload.
	WalletAddress   string  `gorm:"size:255"`
	SessionPriceUSD float64 `gorm:"default:0"`
	FreeSessions    bool    `gorm:"default:true"`

	MCPServers []MCPServerConfig `gorm:"foreignKey:AgentID"`
	APITools   []APIToolConfig   `gorm:"foreignKey:AgentID"`
}

func (Agent) TableName() string {
	return "agents"
}

// flagEnabled treats an unset flag as enabled.
func flagEnabled(b *bool) bool {
	return b == nil || *b
}

func (a *Agent) KnowledgeOn() bool  { return flagEnabled(a.KnowledgeEnabled) }
func (a *Agent) MCPOn() bool        { return flagEnabled(a.MCPEnabled) }
func (a *Agent) APIToolsOn() bool   { return flagEnabled(a.APIToolsEnabled) }
func (a *Agent) WebSearchOn() bool  { return flagEnabled(a.WebSearchEnabled) }
func (a *Agent) SchedulingOn() bool { return flagEnabled(a.SchedulingEnabled) }

// MCPServerConfig points an agent at one external tool server. Tools
// themselves are discovered at request time and never persisted.
type MCPServerConfig struct {
	gorm.Model

	AgentID uint   `gorm:"index;not null"`
	Name    string `gorm:"size:255;not null"`
	URL     string `gorm:"size:1024;not null"`
	// Headers are forwarded verbatim on discovery and invocation calls.
	Headers datatypes.JSONMap `gorm:"type:json"`
	// Instructions is owner-provided free text; "always" instructs the
	// pipeline to engage the server on every message.
	Instructions string `gorm:"type:text"`
}

func (MCPServerConfig) TableName() string {
	return "mcp_servers"
}

// HeaderMap flattens the stored JSON headers into string pairs.
func (s *MCPServerConfig) HeaderMap() map[string]string {
	headers := make(map[string]string, len(s.Headers))
	for k, v := range s.Headers {
		if str, ok := v.(string); ok {
			headers[k] = str
		}
	}
	return headers
}

// ToolKind discriminates how a generic API tool is invoked.
type ToolKind string

const (
	ToolKindGeneric ToolKind = "generic"
	ToolKindGraphQL ToolKind = "graphql"
	ToolKindOpenAPI ToolKind = "openapi"
)

// APIToolConfig is a statically configured HTTP tool owned by an agent.
// Rows are validated at write time; within a request they are immutable.
type APIToolConfig struct {
	gorm.Model

	AgentID      uint              `gorm:"index;not null"`
	Name         string            `gorm:"size:255;not null"`
	URL          string            `gorm:"size:1024;not null"`
	Method       string            `gorm:"size:10;not null"`
	Headers      datatypes.JSONMap `gorm:"type:json"`
	APIKey       string            `gorm:"size:1024"`
	Instructions string            `gorm:"type:text"`
	Kind         ToolKind          `gorm:"type:varchar(20);default:'generic'"`
	// SchemaText grounds model-synthesized GraphQL queries / OpenAPI bodies.
	SchemaText string `gorm:"type:text"`
}

func (APIToolConfig) TableName() string {
	return "api_tools"
}

// HeaderMap flattens the stored JSON headers into string pairs.
func (t *APIToolConfig) HeaderMap() map[string]string {
	headers := make(map[string]string, len(t.Headers))
	for k, v := range t.Headers {
		if str, ok := v.(string); ok {
			headers[k] = str
		}
	}
	return headers
}

// Validate rejects malformed tool configs at load time rather than call time.
func (t *APIToolConfig) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("api tool: name is required")
	}
	if _, err := url.ParseRequestURI(t.URL); err != nil {
		return fmt.Errorf("api tool '%s': invalid url: %w", t.Name, err)
	}
	switch strings.ToUpper(t.Method) {
	case "GET", "POST", "PUT", "PATCH", "DELETE":
	default:
		return fmt.Errorf("api tool '%s': unsupported method '%s'", t.Name, t.Method)
	}
	switch t.Kind {
	case "", ToolKindGeneric, ToolKindGraphQL, ToolKindOpenAPI:
	default:
		return fmt.Errorf("api tool '%s': unknown kind '%s'", t.Name, t.Kind)
	}
	return nil
}
