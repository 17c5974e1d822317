package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInstructionOrdering(t *testing.T) {
	out := buildInstruction(contextParts{
		ToolBlocks:  []string{"Result of get_forecast:\nsunny"},
		APIBlocks:   []string{"Result of tool orders:\nthree open"},
		Personality: "You are a concierge.",
		Knowledge:   "The hotel opened in 1912.",
		Scheduling:  "Open slots: Wednesday 09:00-09:30.",
	})

	positions := []int{
		strings.Index(out, "Never show the user"),
		strings.Index(out, "sunny"),
		strings.Index(out, "three open"),
		strings.Index(out, "concierge"),
		strings.Index(out, "1912"),
		strings.Index(out, "Wednesday"),
		strings.Index(out, "Remember:"),
	}
	for i, pos := range positions {
		assert.GreaterOrEqual(t, pos, 0, "section %d missing", i)
		if i > 0 {
			assert.Greater(t, pos, positions[i-1], "section %d out of order", i)
		}
	}
}

func TestBuildInstructionWithoutToolData(t *testing.T) {
	out := buildInstruction(contextParts{Personality: "You are a concierge."})
	assert.NotContains(t, out, "Remember:")
	assert.NotContains(t, out, "Never show the user")
	assert.Equal(t, "You are a concierge.", out)
}

func TestBuildInstructionEmpty(t *testing.T) {
	assert.Empty(t, buildInstruction(contextParts{}))
}
