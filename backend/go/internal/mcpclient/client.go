// Package mcpclient talks to external tool servers over the MCP streamable
// HTTP transport: one "list tools" call and one "invoke tool" call, with a
// fresh connection per operation.
package mcpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Aivatar/backend/go/internal/models"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	discoverTimeout = 10 * time.Second
	invokeTimeout   = 30 * time.Second
)

// Client dials tool servers on demand. It holds no per-server state; the
// discovery cache above it absorbs repeated listings.
type Client struct{}

// New creates a tool server client.
func New() *Client {
	return &Client{}
}

// connect dials and initializes an MCP session against endpoint.
func (c *Client) connect(ctx context.Context, endpoint string, headers map[string]string) (*client.Client, error) {
	var opts []transport.StreamableHTTPCOption
	if len(headers) > 0 {
		opts = append(opts, transport.WithHTTPHeaders(headers))
	}
	mcpClient, err := client.NewStreamableHttpClient(endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create client for '%s': %w", endpoint, err)
	}

	initRequest := mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: mcp.Implementation{
				Name:    "aivatar-agent",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	}
	if _, err := mcpClient.Initialize(ctx, initRequest); err != nil {
		mcpClient.Close()
		return nil, fmt.Errorf("unable to initialize session with '%s': %w", endpoint, err)
	}
	return mcpClient, nil
}

// Discover lists the tools advertised by endpoint.
func (c *Client) Discover(ctx context.Context, endpoint string, headers map[string]string) ([]models.ToolDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, discoverTimeout)
	defer cancel()

	mcpClient, err := c.connect(ctx, endpoint, headers)
	if err != nil {
		return nil, err
	}
	defer mcpClient.Close()

	result, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("unable to list tools on '%s': %w", endpoint, err)
	}

	tools := make([]models.ToolDescriptor, 0, len(result.Tools))
	for _, tool := range result.Tools {
		tools = append(tools, models.ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: fromInputSchema(tool.InputSchema),
		})
	}
	return tools, nil
}

// CallTool invokes one tool on endpoint and returns the concatenated text
// content of the result.
func (c *Client) CallTool(ctx context.Context, endpoint string, headers map[string]string, name string, args map[string]interface{}) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, invokeTimeout)
	defer cancel()

	mcpClient, err := c.connect(ctx, endpoint, headers)
	if err != nil {
		return "", err
	}
	defer mcpClient.Close()

	result, err := mcpClient.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return "", fmt.Errorf("tool '%s' failed on '%s': %w", name, endpoint, err)
	}
	if result.IsError {
		return "", fmt.Errorf("tool '%s' returned an error result", name)
	}

	var sb strings.Builder
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String(), nil
}

// fromInputSchema converts the wire-level tool schema into the internal
// Schema type. Unknown property shapes degrade to untyped parameters.
func fromInputSchema(schema mcp.ToolInputSchema) *models.Schema {
	if schema.Type == "" && len(schema.Properties) == 0 {
		return nil
	}
	out := &models.Schema{
		Type:     schema.Type,
		Required: schema.Required,
	}
	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*models.Schema, len(schema.Properties))
		for name, raw := range schema.Properties {
			prop := &models.Schema{}
			if m, ok := raw.(map[string]interface{}); ok {
				if t, ok := m["type"].(string); ok {
					prop.Type = t
				}
				if d, ok := m["description"].(string); ok {
					prop.Description = d
				}
			}
			out.Properties[name] = prop
		}
	}
	return out
}
