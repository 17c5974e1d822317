package service

import (
	"context"
	"fmt"

	"Aivatar/backend/go/internal/llm"
	"Aivatar/backend/go/internal/models"
	"Aivatar/backend/go/internal/relevance"
)

const fallbackSummaryTokens = 512

// mcpContext walks the agent's MCP servers and collects one context block
// per server that contributed something. Servers that fail relevance are
// skipped; servers with no discoverable tools fall back to a web-grounded
// summary of what the service offers.
func (s *Service) mcpContext(ctx context.Context, agent *models.Agent, message string) []string {
	if s.discovery == nil || s.selector == nil {
		return nil
	}
	var blocks []string
	for _, server := range agent.MCPServers {
		if !relevance.ServerRelevant(server, message) {
			continue
		}
		tools := s.discovery.Tools(ctx, server.URL, server.HeaderMap())
		if len(tools) == 0 {
			if summary := s.webSummary(ctx, server, message); summary != "" {
				blocks = append(blocks, summary)
			}
			continue
		}
		if block, ok := s.selector.Run(ctx, message, server, tools); ok {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// webSummary substitutes a search-grounded description of the server when
// tool discovery yields nothing usable.
func (s *Service) webSummary(ctx context.Context, server models.MCPServerConfig, message string) string {
	prompt := fmt.Sprintf(
		"Briefly summarize what the service %q provides, focused on what is relevant to this request: %s",
		server.Name, message)
	summary, err := s.model.Chat(ctx, &llm.ChatRequest{
		Message:         prompt,
		MaxOutputTokens: fallbackSummaryTokens,
		WebSearch:       true,
	})
	if err != nil {
		s.log.WithError(err).WithField("server", server.Name).Warn("web summary fallback failed")
		return ""
	}
	if summary == "" {
		return ""
	}
	return fmt.Sprintf("Background on %s:\n%s", server.Name, summary)
}

// apiToolContext runs every configured HTTP tool through its relevance
// gate and collects the resulting blocks.
func (s *Service) apiToolContext(ctx context.Context, agent *models.Agent, message string) []string {
	if s.invoker == nil {
		return nil
	}
	var blocks []string
	for _, tool := range agent.APITools {
		if block, ok := s.invoker.MaybeInvoke(ctx, tool, message); ok && block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}
