// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Output formatting, day-name parsing and lipgloss styles for plan rendering
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/harper/olympus/internal/models"
)

var (
	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// writeJSON prints v as indented JSON
func writeJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintf(out, "%s\n", data)
	return nil
}

// parseDay accepts a weekday label in any case
func parseDay(s string) (string, error) {
	for _, d := range models.Weekdays {
		if strings.EqualFold(d, strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day %q (want one of %s)", s, strings.Join(models.Weekdays, ", "))
}

// orPlaceholder renders empty metric values as "--"
func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return "--"
	}
	return s
}

// formatSleep renders a minute count as "Xh Ym"
func formatSleep(minutes string) string {
	n, err := strconv.Atoi(strings.TrimSpace(minutes))
	if err != nil || n < 0 {
		return "--"
	}
	return fmt.Sprintf("%dh %dm", n/60, n%60)
}

func checkbox(done bool) string {
	if done {
		return doneStyle.Render("[x]")
	}
	return "[ ]"
}

// writeDay prints one day's items in time order as a table
func writeDay(out io.Writer, day models.DailyPlan) {
	done, total := day.Progress()
	fmt.Fprintf(out, "%s %s\n", headingStyle.Render(day.Day), mutedStyle.Render(fmt.Sprintf("(%d/%d)", done, total)))

	items := day.Sorted()
	if len(items) == 0 {
		fmt.Fprintf(out, "  %s\n", mutedStyle.Render("Rest day"))
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, it := range items {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
			checkbox(it.Completed),
			it.Time,
			it.Type,
			truncate(it.Activity, 40),
			mutedStyle.Render(it.ID))
	}
	w.Flush()
}

// containsString checks if a slice contains a string
func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
