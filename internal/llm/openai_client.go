// ABOUTME: OpenAI client that generates weekly longevity plans and grocery lists
// ABOUTME: Uses strict JSON schema responses; every failure yields an unchanged Result
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/harper/olympus/internal/logging"
	"github.com/harper/olympus/internal/models"
)

const (
	// DefaultChatModel is the default model for generation
	DefaultChatModel = "gpt-4o-mini"
	// DefaultTimeout bounds a single generation request
	DefaultTimeout = 60 * time.Second
)

// ClientConfig holds configuration for the generator
type ClientConfig struct {
	APIKey    string
	ChatModel string
	BaseURL   string
	Timeout   time.Duration
}

// DefaultConfig returns the default generator configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:    apiKey,
		ChatModel: DefaultChatModel,
		Timeout:   DefaultTimeout,
	}
}

// Result carries a generated value. Changed is false whenever generation failed, in which
// case Reason says why and Value is the zero value.
type Result[T any] struct {
	Value   T
	Changed bool
	Reason  string
}

func unchanged[T any](reason string) Result[T] {
	return Result[T]{Reason: reason}
}

// Generator produces plans and grocery lists from a chat model
type Generator struct {
	client    *openai.Client
	chatModel string
	timeout   time.Duration
}

// NewGenerator creates a generator with the given API key using default configuration
func NewGenerator(apiKey string) (*Generator, error) {
	return NewGeneratorWithConfig(DefaultConfig(apiKey))
}

// NewGeneratorWithConfig creates a generator with custom configuration
func NewGeneratorWithConfig(config *ClientConfig) (*Generator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	oc := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		oc.BaseURL = config.BaseURL
	}

	model := config.ChatModel
	if model == "" {
		model = DefaultChatModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Generator{
		client:    openai.NewClientWithConfig(oc),
		chatModel: model,
		timeout:   timeout,
	}, nil
}

// planItemResponse mirrors PlanItem for the response schema
type planItemResponse struct {
	ID          string `json:"id" description:"Unique item id"`
	Time        string `json:"time" description:"24-hour HH:MM start time"`
	Activity    string `json:"activity"`
	Type        string `json:"type" enum:"SUPPLEMENT,MEAL,EXERCISE,SLEEP,FASTING,BIOHACK"`
	Description string `json:"description" description:"The biological benefit of the activity"`
	Completed   bool   `json:"completed"`
}

type dailyPlanResponse struct {
	Day   string             `json:"day" enum:"Sunday,Monday,Tuesday,Wednesday,Thursday,Friday,Saturday"`
	Items []planItemResponse `json:"items"`
}

type planResponse struct {
	Week []dailyPlanResponse `json:"week"`
}

type groceryCategoryResponse struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

type groceryResponse struct {
	Categories []groceryCategoryResponse `json:"categories"`
}

const architectPrompt = `You are the Olympus Longevity Architect. Design an ELITE 7-day Age Reversal Protocol for:
Profile: %syo %s, Goals: %s.

%s

PROTOCOL REQUIREMENTS (SCIENTIFIC STANDARDS):
1. EXERCISE:
   - Zone 2 Cardio (45m, 3-4x/week).
   - Strength Training (High intensity to failure, 3x/week).
   - VO2 Max (4x4 Intervals, 1x/week).
2. HORMESIS:
   - Sauna (20m @ 80C+, 4x/week).
   - Cold Plunge (1-3m, Daily morning).
3. SUPPLEMENTS (SINCLAIR/BLUEPRINT):
   - Morning: 1g NMN, 500mg Resveratrol, Vitamin D3+K2, Omega-3.
   - Evening: Magnesium Threonate/Glycinate.
4. NUTRITION:
   - Low inflammation / Blue Zone style.
   - Strict Time-Restricted Feeding (e.g., 18:6).
5. STRESS: Box breathing (5m daily).

Cover all seven days from Sunday to Saturday exactly once.
Every item must have a specific 'time' (HH:MM), 'activity', and a 'description' explaining the biological benefit (e.g., 'mTOR inhibition', 'SIRT1 activation').`

const groceryPrompt = `Analyze this 7-day protocol: %s
Extract all specific ingredients for meals and all required supplements.
Categorize into: %s.
Ignore generic terms like "Water" or "Salt".`

// healthContext renders the biometric feed when metrics are connected
func healthContext(profile models.UserProfile) string {
	if !profile.Connected() {
		return "No external health data. Using self-reported profile."
	}
	m := profile.HealthMetrics
	return fmt.Sprintf(`FULL BIOMETRIC FEED:
[Activity] Steps: %s, VO2 Max: %s.
[Metabolic] Glucose: %smg/dL, Insulin: %suIU.
[Recovery] HRV: %sms, Deep Sleep: %sm.`,
		m.DailySteps, m.VO2Max, m.BloodGlucoseMgDl, m.InsulinMicroIU, m.HRV, m.DeepSleepMinutes)
}

// PlanPrompt builds the generation prompt for profile
func PlanPrompt(profile models.UserProfile) string {
	return fmt.Sprintf(architectPrompt, profile.Age, profile.Gender, profile.Goals, healthContext(profile))
}

// GeneratePlan asks the model for a full week. The plan is only marked Changed when the
// response parses and covers each weekday exactly once.
func (g *Generator) GeneratePlan(ctx context.Context, profile models.UserProfile) Result[models.LongevityPlan] {
	var resp planResponse
	if err := g.complete(ctx, "longevity_plan", PlanPrompt(profile), planResponse{}, &resp); err != nil {
		logging.Warn("plan generation failed", "err", err)
		return unchanged[models.LongevityPlan](err.Error())
	}

	plan, err := toPlan(resp)
	if err != nil {
		logging.Warn("generated plan rejected", "err", err)
		return unchanged[models.LongevityPlan](err.Error())
	}

	logging.Info("plan generated", "days", len(plan.Week))
	return Result[models.LongevityPlan]{Value: plan, Changed: true}
}

// GenerateGroceryList derives a categorized shopping list from plan
func (g *Generator) GenerateGroceryList(ctx context.Context, plan models.LongevityPlan) Result[models.GroceryList] {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return unchanged[models.GroceryList](fmt.Sprintf("failed to marshal plan: %v", err))
	}
	prompt := fmt.Sprintf(groceryPrompt, planJSON, quoteList(models.GroceryCategories))

	var resp groceryResponse
	if err := g.complete(ctx, "grocery_list", prompt, groceryResponse{}, &resp); err != nil {
		logging.Warn("grocery generation failed", "err", err)
		return unchanged[models.GroceryList](err.Error())
	}

	list := models.GroceryList{}
	for _, c := range resp.Categories {
		list.Categories = append(list.Categories, models.GroceryItem{Category: c.Category, Items: c.Items})
	}
	list = list.Normalize()
	if len(list.Categories) == 0 {
		return unchanged[models.GroceryList]("grocery list is empty")
	}
	return Result[models.GroceryList]{Value: list, Changed: true}
}

// complete runs one schema-constrained chat completion and decodes the reply into dest.
// There are no retries.
func (g *Generator) complete(ctx context.Context, name, prompt string, shape, dest interface{}) error {
	schema, err := jsonschema.GenerateSchemaForType(shape)
	if err != nil {
		return fmt.Errorf("failed to build response schema: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("generation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return errors.New("no completion choices returned")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return errors.New("empty completion")
	}
	if err := json.Unmarshal([]byte(content), dest); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// toPlan converts and validates a plan response. Missing or duplicate ids are replaced with
// fresh uuids and every item starts incomplete.
func toPlan(resp planResponse) (models.LongevityPlan, error) {
	plan := models.LongevityPlan{Week: make([]models.DailyPlan, 0, len(resp.Week))}
	seen := make(map[string]bool)

	for _, d := range resp.Week {
		day := models.DailyPlan{Day: strings.TrimSpace(d.Day), Items: make([]models.PlanItem, 0, len(d.Items))}
		for _, it := range d.Items {
			typ := models.ActivityType(strings.ToUpper(strings.TrimSpace(it.Type)))
			if !typ.Valid() {
				return models.LongevityPlan{}, fmt.Errorf("item %q on %s has unknown type %q", it.Activity, day.Day, it.Type)
			}
			id := strings.TrimSpace(it.ID)
			if id == "" || seen[id] {
				id = uuid.New().String()
			}
			seen[id] = true
			day.Items = append(day.Items, models.PlanItem{
				ID:          id,
				Time:        strings.TrimSpace(it.Time),
				Activity:    it.Activity,
				Type:        typ,
				Description: it.Description,
			})
		}
		plan.Week = append(plan.Week, day)
	}

	if err := plan.Validate(); err != nil {
		return models.LongevityPlan{}, err
	}
	return plan, nil
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, ", ")
}

// PlanStore accepts a replacement plan
type PlanStore interface {
	SetPlan(plan models.LongevityPlan) error
}

// ApplyPlan adopts a generated plan only when the result is Changed. It reports whether
// the store was updated.
func ApplyPlan(store PlanStore, r Result[models.LongevityPlan]) (bool, error) {
	if !r.Changed {
		return false, nil
	}
	if err := store.SetPlan(r.Value); err != nil {
		return true, fmt.Errorf("plan adopted but not persisted: %w", err)
	}
	return true, nil
}
