// ABOUTME: CLI commands to view and update the user profile
// ABOUTME: Supports flag-based updates and an interactive form
package commands

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/harper/olympus/internal/models"
)

// profileField binds a CLI flag to one profile attribute
type profileField struct {
	flag  string
	label string
	get   func(*models.UserProfile) *string
}

var profileFields = []profileField{
	{"age", "Age", func(p *models.UserProfile) *string { return &p.Age }},
	{"gender", "Gender", func(p *models.UserProfile) *string { return &p.Gender }},
	{"ethnicity", "Ethnicity", func(p *models.UserProfile) *string { return &p.Ethnicity }},
	{"height", "Height", func(p *models.UserProfile) *string { return &p.Height }},
	{"weight", "Weight", func(p *models.UserProfile) *string { return &p.Weight }},
	{"lifestyle", "Lifestyle", func(p *models.UserProfile) *string { return &p.Lifestyle }},
	{"goals", "Goals", func(p *models.UserProfile) *string { return &p.Goals }},
}

var lifestyleOptions = []string{"Sedentary", "Lightly Active", "Moderately Active", "Very Active", "Athlete"}

// NewProfileCmd creates profile command
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and manage user profile",
		Long: `View and manage your user profile.

The profile holds your age, body, lifestyle and goals along with the
latest imported biometrics. The AI architect designs your protocol from it.

Examples:
  olympus profile
  olympus profile --format json
  olympus profile set --age 41 --goals "Lower resting heart rate"
  olympus profile edit`,
		RunE: runProfileShow,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the profile and biometrics",
		RunE:  runProfileShow,
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields",
		Long: `Update profile fields. Only the flags you pass are changed.

Examples:
  olympus profile set --age 41
  olympus profile set --lifestyle "Very Active" --weight 76kg`,
		RunE: runProfileSet,
	}
	for _, f := range profileFields {
		setCmd.Flags().String(f.flag, "", "Set "+strings.ToLower(f.label))
	}

	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the profile in an interactive form",
		RunE:  runProfileEdit,
	}

	cmd.AddCommand(showCmd, setCmd, editCmd)
	return cmd
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	profile, _ := store.Get()
	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), profile)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "FIELD\tVALUE\n")
	fmt.Fprintf(w, "-----\t-----\n")
	for _, f := range profileFields {
		fmt.Fprintf(w, "%s\t%s\n", f.label, truncate(orPlaceholder(*f.get(&profile)), 60))
	}

	if profile.Connected() {
		m := profile.HealthMetrics
		fmt.Fprintf(w, "\t\n")
		fmt.Fprintf(w, "Steps\t%s\n", orPlaceholder(m.DailySteps))
		fmt.Fprintf(w, "Active Calories\t%s\n", orPlaceholder(m.ActiveCalories))
		fmt.Fprintf(w, "VO2 Max\t%s\n", orPlaceholder(m.VO2Max))
		fmt.Fprintf(w, "Resting HR\t%s\n", orPlaceholder(m.RestingHeartRate))
		fmt.Fprintf(w, "HRV\t%s\n", orPlaceholder(m.HRV))
		fmt.Fprintf(w, "Glucose\t%s\n", orPlaceholder(m.BloodGlucoseMgDl))
		fmt.Fprintf(w, "Deep Sleep\t%s\n", formatSleep(m.DeepSleepMinutes))
		fmt.Fprintf(w, "Last Synced\t%s\n", orPlaceholder(m.LastSynced))
	} else {
		fmt.Fprintf(w, "Biometrics\t(not connected)\n")
	}

	return w.Flush()
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	updates := make(map[string]string)
	for _, f := range profileFields {
		if cmd.Flags().Changed(f.flag) {
			v, _ := cmd.Flags().GetString(f.flag)
			updates[f.flag] = v
		}
	}
	if len(updates) == 0 {
		return fmt.Errorf("no updates specified. Use --age, --gender, --ethnicity, --height, --weight, --lifestyle or --goals")
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	profile, _ := store.Get()
	for _, f := range profileFields {
		if v, ok := updates[f.flag]; ok {
			*f.get(&profile) = strings.TrimSpace(v)
		}
	}

	if err := store.SetProfile(profile); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Profile updated successfully\n")
	}
	return nil
}

// profileForm builds the interactive editor bound to profile
func profileForm(profile *models.UserProfile) *huh.Form {
	lifestyle := huh.NewOptions(lifestyleOptions...)
	if profile.Lifestyle != "" && !containsString(lifestyleOptions, profile.Lifestyle) {
		lifestyle = append(lifestyle, huh.NewOption(profile.Lifestyle, profile.Lifestyle))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Age").
				Value(&profile.Age),
			huh.NewInput().
				Title("Gender").
				Value(&profile.Gender),
			huh.NewInput().
				Title("Ethnicity").
				Value(&profile.Ethnicity),
			huh.NewInput().
				Title("Height").
				Placeholder("182cm").
				Value(&profile.Height),
			huh.NewInput().
				Title("Weight").
				Placeholder("78kg").
				Value(&profile.Weight),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Lifestyle").
				Options(lifestyle...).
				Value(&profile.Lifestyle),
			huh.NewText().
				Title("Goals").
				Description("What should the protocol optimize for?").
				Value(&profile.Goals),
		),
	)
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	profile, _ := store.Get()
	if err := profileForm(&profile).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("profile form: %w", err)
	}

	if err := store.SetProfile(profile); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Profile updated successfully\n")
	}
	return nil
}
