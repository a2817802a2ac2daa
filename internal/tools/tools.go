// ABOUTME: Plan-mutating tools callable by the realtime coach and the MCP server
// ABOUTME: Declares mark_activity_complete and update_protocol and routes calls to the store
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harper/olympus/internal/logging"
	"github.com/harper/olympus/internal/models"
)

// Tool names
const (
	MarkActivityComplete = "mark_activity_complete"
	UpdateProtocol       = "update_protocol"
)

// AckOutput is the acknowledgement payload returned for every handled call
const AckOutput = `{"result":"ok"}`

// Store is the slice of the profile store the tools mutate
type Store interface {
	SetItemCompletion(day, id string, completed bool) bool
	ReplaceDayItems(day string, items []models.PlanItem) bool
}

// Definition describes one tool for a remote agent
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

var itemSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"id":          map[string]interface{}{"type": "string"},
		"time":        map[string]interface{}{"type": "string", "description": "24-hour HH:MM"},
		"activity":    map[string]interface{}{"type": "string"},
		"type":        map[string]interface{}{"type": "string", "enum": activityTypeNames()},
		"description": map[string]interface{}{"type": "string"},
		"completed":   map[string]interface{}{"type": "boolean"},
	},
}

// Definitions returns the tools the coach may invoke
func Definitions() []Definition {
	return []Definition{
		{
			Name:        UpdateProtocol,
			Description: "Adjust the user schedule based on their feedback. Replaces every item of the given day.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"day":     map[string]interface{}{"type": "string", "enum": models.Weekdays},
					"updates": map[string]interface{}{"type": "array", "items": itemSchema},
				},
				"required": []string{"day", "updates"},
			},
		},
		{
			Name:        MarkActivityComplete,
			Description: "Log completion of a longevity task.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"day":       map[string]interface{}{"type": "string", "enum": models.Weekdays},
					"id":        map[string]interface{}{"type": "string"},
					"completed": map[string]interface{}{"type": "boolean"},
				},
				"required": []string{"day", "id", "completed"},
			},
		},
	}
}

func activityTypeNames() []string {
	names := make([]string, len(models.ActivityTypes))
	for i, t := range models.ActivityTypes {
		names[i] = string(t)
	}
	return names
}

// Result reports the outcome of one call. Matched is false when the day or item was not
// found; such calls are still acknowledged.
type Result struct {
	Output  string
	Matched bool
}

type markArgs struct {
	Day       string `json:"day"`
	ID        string `json:"id"`
	Completed *bool  `json:"completed"`
}

type updateArgs struct {
	Day     string            `json:"day"`
	Updates []models.PlanItem `json:"updates"`
}

// Dispatcher applies tool calls to a store. The store is consulted at call time so calls
// always see the latest plan.
type Dispatcher struct {
	Store Store
}

// NewDispatcher creates a dispatcher over store
func NewDispatcher(store Store) *Dispatcher {
	return &Dispatcher{Store: store}
}

// Dispatch runs the named tool with JSON arguments. Unknown tools and undecodable
// arguments are errors; lookup misses are not.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, rawArgs []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	switch name {
	case MarkActivityComplete:
		var args markArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return Result{}, fmt.Errorf("invalid %s arguments: %w", name, err)
		}
		if args.Completed == nil {
			return Result{}, fmt.Errorf("invalid %s arguments: completed is required", name)
		}
		matched := d.Store.SetItemCompletion(args.Day, args.ID, *args.Completed)
		logging.Info("tool call applied", "tool", name, "day", args.Day, "id", args.ID, "completed", *args.Completed, "matched", matched)
		return Result{Output: AckOutput, Matched: matched}, nil

	case UpdateProtocol:
		var args updateArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return Result{}, fmt.Errorf("invalid %s arguments: %w", name, err)
		}
		items := normalizeItems(args.Updates)
		matched := d.Store.ReplaceDayItems(args.Day, items)
		logging.Info("tool call applied", "tool", name, "day", args.Day, "items", len(items), "matched", matched)
		return Result{Output: AckOutput, Matched: matched}, nil

	default:
		return Result{}, fmt.Errorf("unknown tool %q", name)
	}
}

// normalizeItems gives id-less items a fresh uuid and upper-cases their type
func normalizeItems(items []models.PlanItem) []models.PlanItem {
	out := make([]models.PlanItem, len(items))
	for i, it := range items {
		if strings.TrimSpace(it.ID) == "" {
			it.ID = uuid.New().String()
		}
		it.Type = models.ActivityType(strings.ToUpper(string(it.Type)))
		out[i] = it
	}
	return out
}
