package service

import "strings"

// contextParts holds the per-stage outputs before assembly. Each field is
// independent; an empty field simply drops out of the instruction.
type contextParts struct {
	ToolBlocks  []string
	APIBlocks   []string
	Personality string
	Knowledge   string
	Scheduling  string
}

const (
	toolDataDirective = "You have live data retrieved from connected tools. " +
		"Use it to answer the user in natural language. Never show the user " +
		"code, queries, tool syntax or raw payloads."
	toolDataReminder = "Remember: present tool results conversationally. " +
		"Do not emit code, query languages or raw tool output."
)

// buildInstruction assembles the system instruction in a fixed order:
// tool results first, then persona, background knowledge and
// availability. When tool data is present a closing reminder repeats the
// no-raw-output rule after everything else.
func buildInstruction(p contextParts) string {
	var sections []string

	hasToolData := len(p.ToolBlocks) > 0 || len(p.APIBlocks) > 0
	if hasToolData {
		var sb strings.Builder
		sb.WriteString(toolDataDirective)
		for _, block := range p.ToolBlocks {
			sb.WriteString("\n\n")
			sb.WriteString(block)
		}
		for _, block := range p.APIBlocks {
			sb.WriteString("\n\n")
			sb.WriteString(block)
		}
		sections = append(sections, sb.String())
	}

	if p.Personality != "" {
		sections = append(sections, p.Personality)
	}
	if p.Knowledge != "" {
		sections = append(sections, "Background knowledge you may draw on when relevant:\n"+p.Knowledge)
	}
	if p.Scheduling != "" {
		sections = append(sections, p.Scheduling)
	}
	if hasToolData {
		sections = append(sections, toolDataReminder)
	}

	return strings.Join(sections, "\n\n")
}
