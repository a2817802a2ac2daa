// ABOUTME: CLI commands to view, tick off and regenerate the weekly protocol
// ABOUTME: Includes the today dashboard with meals and headline biometrics
package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/olympus/internal/config"
	"github.com/harper/olympus/internal/llm"
	"github.com/harper/olympus/internal/models"
)

var (
	planDay string

	// now is swapped in tests
	now = time.Now
)

// NewPlanCmd creates the plan command group
func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "View and manage the 7-day longevity protocol",
		Long: `View and manage the 7-day longevity protocol.

Examples:
  olympus plan show
  olympus plan show --day monday
  olympus plan today
  olympus plan toggle Monday 4
  olympus plan generate`,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the weekly protocol",
		RunE:  runPlanShow,
	}
	showCmd.Flags().StringVar(&planDay, "day", "", "Only show this day")

	cmd.AddCommand(showCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Show today's protocol, meals and headline biometrics",
		RunE:  runPlanToday,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle DAY ID",
		Short: "Flip the completion flag of one item",
		Args:  cobra.ExactArgs(2),
		RunE:  runPlanToggle,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Design a new protocol from your profile with the AI architect",
		Long: `Design a new 7-day protocol from your profile and biometrics.

The current plan is kept unless the generated plan is complete and valid.
Requires OPENAI_API_KEY.`,
		RunE: runPlanGenerate,
	})

	return cmd
}

func runPlanShow(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	_, plan := store.Get()
	out := cmd.OutOrStdout()

	if planDay != "" {
		day, err := parseDay(planDay)
		if err != nil {
			return err
		}
		daily, ok := plan.Day(day)
		if !ok {
			return fmt.Errorf("no plan for %s", day)
		}
		if outputFormat == "json" {
			return writeJSON(out, daily)
		}
		writeDay(out, daily)
		return nil
	}

	if outputFormat == "json" {
		return writeJSON(out, plan)
	}

	// Show days in calendar order regardless of storage order
	for i, name := range models.Weekdays {
		daily, ok := plan.Day(name)
		if !ok {
			continue
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		writeDay(out, daily)
	}
	return nil
}

// dashboard is the today summary
type dashboard struct {
	Day     string            `json:"day"`
	Items   []models.PlanItem `json:"items"`
	Meals   []models.PlanItem `json:"meals"`
	Metrics map[string]string `json:"metrics"`
}

func buildDashboard(profile models.UserProfile, plan models.LongevityPlan, t time.Time) dashboard {
	d := dashboard{
		Day:   models.WeekdayName(t),
		Items: []models.PlanItem{},
		Meals: []models.PlanItem{},
		Metrics: map[string]string{
			"glucose":   "--",
			"deepSleep": "--",
			"restingHR": "--",
			"vo2Max":    "--",
		},
	}
	if daily, ok := plan.Day(d.Day); ok {
		d.Items = daily.Sorted()
		if meals := daily.OfType(models.Meal); meals != nil {
			d.Meals = meals
		}
	}
	if profile.Connected() {
		m := profile.HealthMetrics
		d.Metrics["glucose"] = orPlaceholder(m.BloodGlucoseMgDl)
		d.Metrics["deepSleep"] = formatSleep(m.DeepSleepMinutes)
		d.Metrics["restingHR"] = orPlaceholder(m.RestingHeartRate)
		d.Metrics["vo2Max"] = orPlaceholder(m.VO2Max)
	}
	return d
}

func writeDashboard(out io.Writer, d dashboard) {
	fmt.Fprintf(out, "%s\n", headingStyle.Render("Today: "+d.Day))
	fmt.Fprintf(out, "Glucose %s mg/dL | Deep Sleep %s | Resting HR %s bpm | VO2 Max %s\n\n",
		d.Metrics["glucose"], d.Metrics["deepSleep"], d.Metrics["restingHR"], d.Metrics["vo2Max"])

	writeDay(out, models.DailyPlan{Day: d.Day, Items: d.Items})

	fmt.Fprintf(out, "\n%s\n", headingStyle.Render("Meals"))
	if len(d.Meals) == 0 {
		fmt.Fprintf(out, "  %s\n", mutedStyle.Render("No meals scheduled"))
		return
	}
	for _, meal := range d.Meals {
		fmt.Fprintf(out, "  %s  %s\n", meal.Time, meal.Activity)
		if meal.Description != "" {
			fmt.Fprintf(out, "         %s\n", mutedStyle.Render(truncate(meal.Description, 70)))
		}
	}
}

func runPlanToday(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	profile, plan := store.Get()
	d := buildDashboard(profile, plan, now())

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), d)
	}
	writeDashboard(cmd.OutOrStdout(), d)
	return nil
}

func runPlanToggle(cmd *cobra.Command, args []string) error {
	day, err := parseDay(args[0])
	if err != nil {
		return err
	}
	id := args[1]

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if !store.ToggleItemCompletion(day, id) {
		return fmt.Errorf("no item %q on %s", id, day)
	}

	_, plan := store.Get()
	item, _ := plan.Item(day, id)
	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), item)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", checkbox(item.Completed), item.Time, item.Activity)
	}
	return nil
}

// newGenerator builds the plan generator from configuration
func newGenerator(cfg *config.Config) (*llm.Generator, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	return llm.NewGeneratorWithConfig(&llm.ClientConfig{
		APIKey:    cfg.OpenAIKey,
		ChatModel: cfg.ChatModel,
		Timeout:   cfg.Timeout,
	})
}

func runPlanGenerate(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Designing your protocol...\n")
	}

	profile, _ := store.Get()
	result := generator.GeneratePlan(context.Background(), profile)

	applied, err := llm.ApplyPlan(store, result)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	if !applied {
		return fmt.Errorf("plan unchanged: %s", result.Reason)
	}

	_, plan := store.Get()
	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), plan)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "New protocol adopted.\n")
	}
	return nil
}
