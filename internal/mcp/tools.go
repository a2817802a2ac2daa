// ABOUTME: MCP tool definitions and registration for the Olympus server
// ABOUTME: Exposes the coach's plan tools plus read-only plan and profile lookups
package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/olympus/internal/llm"
	"github.com/harper/olympus/internal/models"
	"github.com/harper/olympus/internal/storage"
	"github.com/harper/olympus/internal/tools"
)

// Read-only tool names
const (
	GetPlan      = "get_plan"
	GetToday     = "get_today"
	GetProfile   = "get_profile"
	GeneratePlan = "generate_plan"
)

// Planner regenerates the weekly plan from a profile
type Planner interface {
	GeneratePlan(ctx context.Context, profile models.UserProfile) llm.Result[models.LongevityPlan]
}

// RegisterTools registers all MCP tools with the server. planner may be nil, in which case
// generate_plan is not offered.
func RegisterTools(server *mcpserver.MCPServer, store *storage.Store, planner Planner) *Handlers {
	handlers := NewHandlers(store, planner)

	// mark_activity_complete and update_protocol share their schema with the voice coach
	for _, def := range tools.Definitions() {
		server.AddTool(toolFromDefinition(def), handlers.dispatchTool(def.Name))
	}

	server.AddTool(mcp.Tool{
		Name:        GetPlan,
		Description: "Return the weekly longevity protocol, or a single day when 'day' is given.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"day": map[string]interface{}{
					"type":        "string",
					"description": "Weekday label (Sunday through Saturday)",
					"enum":        models.Weekdays,
				},
			},
		},
	}, handlers.GetPlan)

	server.AddTool(mcp.Tool{
		Name:        GetToday,
		Description: "Return today's protocol items in time order with completion progress.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetToday)

	server.AddTool(mcp.Tool{
		Name:        GetProfile,
		Description: "Return the user's profile and the latest imported health metrics.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetProfile)

	if planner != nil {
		server.AddTool(mcp.Tool{
			Name:        GeneratePlan,
			Description: "Design a new 7-day protocol from the current profile. The existing plan is kept when generation fails.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
			},
		}, handlers.GeneratePlan)
	}

	return handlers
}

// NewHandlers creates handlers over store using the wall clock
func NewHandlers(store *storage.Store, planner Planner) *Handlers {
	return &Handlers{
		store:      store,
		dispatcher: tools.NewDispatcher(store),
		planner:    planner,
		now:        time.Now,
	}
}

// toolFromDefinition converts a shared tool declaration into an MCP tool
func toolFromDefinition(def tools.Definition) mcp.Tool {
	schema := mcp.ToolInputSchema{Type: "object"}
	if props, ok := def.Parameters["properties"].(map[string]interface{}); ok {
		schema.Properties = props
	}
	if required, ok := def.Parameters["required"].([]string); ok {
		schema.Required = required
	}
	return mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: schema,
	}
}
