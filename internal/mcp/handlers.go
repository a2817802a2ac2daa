// ABOUTME: MCP tool handler implementations for the Olympus server
// ABOUTME: Plan mutations go through the shared dispatcher; lookups return JSON text
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/olympus/internal/llm"
	"github.com/harper/olympus/internal/logging"
	"github.com/harper/olympus/internal/models"
	"github.com/harper/olympus/internal/storage"
	"github.com/harper/olympus/internal/tools"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	store      *storage.Store
	dispatcher *tools.Dispatcher
	planner    Planner
	now        func() time.Time
}

type dispatchResponse struct {
	Result  string `json:"result"`
	Matched bool   `json:"matched"`
}

type todayResponse struct {
	Day       string            `json:"day"`
	Time      string            `json:"time"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
	Items     []models.PlanItem `json:"items"`
}

// dispatchTool adapts a shared plan tool to an MCP handler. Calls that match nothing are
// still successful; the response says so through "matched".
func (h *Handlers) dispatchTool(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawArgs, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode arguments: %v", err)), nil
		}

		result, err := h.dispatcher.Dispatch(ctx, name, rawArgs)
		if err != nil {
			logging.Warn("mcp tool call rejected", "tool", name, "err", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		return jsonResult(dispatchResponse{Result: "ok", Matched: result.Matched})
	}
}

// GetPlan handles the get_plan tool
func (h *Handlers) GetPlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, plan := h.store.Get()

	day := request.GetString("day", "")
	if day == "" {
		return jsonResult(plan)
	}

	daily, ok := plan.Day(day)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no plan for day %q", day)), nil
	}
	return jsonResult(models.DailyPlan{Day: daily.Day, Items: daily.Sorted()})
}

// GetToday handles the get_today tool
func (h *Handlers) GetToday(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := h.now()
	_, plan := h.store.Get()

	resp := todayResponse{
		Day:   models.WeekdayName(now),
		Time:  models.ClockTime(now),
		Items: []models.PlanItem{},
	}
	if daily, ok := plan.Day(resp.Day); ok {
		resp.Items = daily.Sorted()
		resp.Completed, resp.Total = daily.Progress()
	}
	return jsonResult(resp)
}

// GetProfile handles the get_profile tool
func (h *Handlers) GetProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile, _ := h.store.Get()
	return jsonResult(profile)
}

// GeneratePlan handles the generate_plan tool
func (h *Handlers) GeneratePlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.planner == nil {
		return mcp.NewToolResultError("plan generation is not configured (OPENAI_API_KEY not set)"), nil
	}

	profile, _ := h.store.Get()
	result := h.planner.GeneratePlan(ctx, profile)

	applied, err := llm.ApplyPlan(h.store, result)
	if err != nil {
		logging.Warn("generated plan kept in memory only", "err", err)
	}
	if !applied {
		return mcp.NewToolResultError(fmt.Sprintf("plan unchanged: %s", result.Reason)), nil
	}

	_, plan := h.store.Get()
	return jsonResult(plan)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
