// ABOUTME: CLI commands to export and restore the profile and plan as a vault file
// ABOUTME: Restore is all-or-nothing: incomplete vaults leave the store untouched
package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/olympus/internal/storage"
)

var (
	vaultOutput string
	vaultYAML   bool
)

// NewVaultCmd creates the vault command group
func NewVaultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Export or restore your profile and protocol",
		Long: `Export or restore your profile and protocol.

A vault file carries both your profile and your weekly plan. Restoring
replaces both at once, and only when the file contains both.

Examples:
  olympus vault export
  olympus vault export --output backup.json
  olympus vault export --yaml --output backup.yaml
  olympus vault restore backup.json`,
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a vault file",
		RunE:  runVaultExport,
	}
	exportCmd.Flags().StringVarP(&vaultOutput, "output", "o", "", "Output file (default olympus_blueprint_<date>.json, - for stdout)")
	exportCmd.Flags().BoolVar(&vaultYAML, "yaml", false, "Write YAML instead of JSON")

	restoreCmd := &cobra.Command{
		Use:   "restore FILE",
		Short: "Replace profile and plan from a vault file",
		Args:  cobra.ExactArgs(1),
		RunE:  runVaultRestore,
	}

	cmd.AddCommand(exportCmd, restoreCmd)
	return cmd
}

// defaultVaultName names an export olympus_blueprint_<YYYY-MM-DD>
func defaultVaultName(t time.Time, asYAML bool) string {
	ext := "json"
	if asYAML {
		ext = "yaml"
	}
	return fmt.Sprintf("olympus_blueprint_%s.%s", t.Format("2006-01-02"), ext)
}

func runVaultExport(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	data, err := storage.EncodeVault(store.ExportVault(), vaultYAML)
	if err != nil {
		return err
	}

	if vaultOutput == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	path := vaultOutput
	if path == "" {
		path = defaultVaultName(now(), vaultYAML)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing vault: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Vault exported to %s\n", path)
	}
	return nil
}

func runVaultRestore(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading vault: %w", err)
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RestoreVault(data); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Identity Restored.\n")
	}
	return nil
}
