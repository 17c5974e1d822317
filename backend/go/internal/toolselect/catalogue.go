package toolselect

import (
	"fmt"
	"sort"
	"strings"

	"Aivatar/backend/go/internal/models"
)

// RenderCatalogue formats discovered tools as the textual catalogue shown to
// the model: one block per tool with its parameter list and required/optional
// marking.
func RenderCatalogue(tools []models.ToolDescriptor) string {
	var sb strings.Builder
	for _, tool := range tools {
		sb.WriteString("- ")
		sb.WriteString(tool.Name)
		if tool.Description != "" {
			sb.WriteString(": ")
			sb.WriteString(tool.Description)
		}
		sb.WriteString("\n")

		if tool.InputSchema == nil || len(tool.InputSchema.Properties) == 0 {
			continue
		}
		names := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		sb.WriteString("  parameters:\n")
		for _, name := range names {
			prop := tool.InputSchema.Properties[name]
			kind := prop.Type
			if kind == "" {
				kind = "any"
			}
			requirement := "optional"
			if tool.InputSchema.IsRequired(name) {
				requirement = "required"
			}
			sb.WriteString(fmt.Sprintf("    %s (%s, %s)", name, kind, requirement))
			if prop.Description != "" {
				sb.WriteString(": ")
				sb.WriteString(prop.Description)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
