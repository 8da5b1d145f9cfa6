package mcpclient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rodman1980/ai-dial-mcp-fundamentals/internal/mcp"
	"github.com/rodman1980/ai-dial-mcp-fundamentals/pkg/provider/llm"
)

// DiscoverCatalog fetches everything the server offers over an open session.
//
// Tools are required: a tool listing failure fails discovery, because an
// agent without tools cannot act. Resource and prompt listings degrade to
// empty slices with a warning, since not every server implements them.
func DiscoverCatalog(ctx context.Context, session mcp.Session) (*mcp.Catalog, error) {
	tools, err := session.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("mcpclient: discover catalog: %w", err)
	}

	resources, err := session.ListResources(ctx)
	if err != nil {
		slog.Warn("resource listing failed, continuing without resources", "error", err)
		resources = nil
	}

	prompts, err := session.ListPrompts(ctx)
	if err != nil {
		slog.Warn("prompt listing failed, continuing without prompts", "error", err)
		prompts = nil
	}

	return &mcp.Catalog{
		Tools:     tools,
		Resources: resources,
		Prompts:   prompts,
	}, nil
}

// ToolDefinitions projects a catalog's tools into the shape the LLM provider
// layer advertises to the model.
func ToolDefinitions(catalog *mcp.Catalog) []llm.ToolDefinition {
	if catalog == nil {
		return nil
	}
	defs := make([]llm.ToolDefinition, 0, len(catalog.Tools))
	for _, t := range catalog.Tools {
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.InputSchema,
		})
	}
	return defs
}
