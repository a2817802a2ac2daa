// ABOUTME: CLI commands that pull biometrics from Oura and Apple Health
// ABOUTME: Both merge partial updates into the profile and print a status line
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harper/olympus/internal/applehealth"
	"github.com/harper/olympus/internal/keyring"
	"github.com/harper/olympus/internal/oura"
)

var ouraTokenFlag string

// NewImportCmd creates the import command group
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import biometrics from Oura or Apple Health",
		Long: `Import biometrics into your profile.

Imported values are merged into the existing metrics; fields a source
does not provide keep their previous values.

Examples:
  olympus import oura
  olympus import oura --token $OURA_TOKEN
  olympus import apple ~/Downloads/export.xml`,
	}

	ouraCmd := &cobra.Command{
		Use:   "oura",
		Short: "Sync the latest daily activity from Oura",
		Long: `Sync the latest daily activity (steps, active calories) from Oura.

The personal access token is taken from --token, then OURA_TOKEN, then
the system keyring (see 'olympus oura login').`,
		RunE: runImportOura,
	}
	ouraCmd.Flags().StringVar(&ouraTokenFlag, "token", "", "Oura personal access token")

	appleCmd := &cobra.Command{
		Use:   "apple FILE",
		Short: "Import an Apple Health export.xml archive",
		Long: `Import VO2 max, resting heart rate, HRV and blood glucose from an
Apple Health export.xml. Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: runImportApple,
	}

	cmd.AddCommand(ouraCmd, appleCmd)
	return cmd
}

func runImportOura(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	token := keyring.ResolveOuraToken(ouraTokenFlag, cfg.OuraToken)
	client := &oura.Client{BaseURL: cfg.OuraBaseURL}

	status := client.Sync(context.Background(), store, token)
	fmt.Fprintln(cmd.OutOrStdout(), status)
	return nil
}

func runImportApple(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer f.Close()
		r = f
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	status := applehealth.Import(store, r)
	fmt.Fprintln(cmd.OutOrStdout(), status)
	return nil
}
