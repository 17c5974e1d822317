package models

// ToolDescriptor describes one tool advertised by an external tool server.
// Descriptors are discovered at request time, cached with a TTL, and never
// persisted.
type ToolDescriptor struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	InputSchema *Schema `json:"inputSchema,omitempty"`
}

// Schema is a typed parameter map compatible with OpenAPI 3.0.3 / JSON Schema.
type Schema struct {
	Type        string             `json:"type"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// IsRequired reports whether name is listed as a required property.
func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}
