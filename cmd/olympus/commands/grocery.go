// ABOUTME: CLI command that derives a categorized grocery list from the current protocol
// ABOUTME: The list is generated on demand and never stored
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/olympus/internal/models"
)

// NewGroceryCmd creates the grocery command
func NewGroceryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grocery",
		Short: "Build a grocery list from the current protocol",
		Long: `Extract meal ingredients and supplements from the current 7-day
protocol and group them into shopping categories.

Requires OPENAI_API_KEY. The list is not saved.

Examples:
  olympus grocery
  olympus grocery --format json`,
		RunE: runGrocery,
	}
}

func runGrocery(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	_, plan := store.Get()
	result := generator.GenerateGroceryList(context.Background(), plan)
	if !result.Changed {
		return fmt.Errorf("grocery list unavailable: %s", result.Reason)
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), result.Value)
	}
	writeGroceryList(cmd, result.Value)
	return nil
}

func writeGroceryList(cmd *cobra.Command, list models.GroceryList) {
	out := cmd.OutOrStdout()
	for i, c := range list.Categories {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s\n", headingStyle.Render(c.Category))
		for _, item := range c.Items {
			fmt.Fprintf(out, "  [ ] %s\n", item)
		}
	}
}

