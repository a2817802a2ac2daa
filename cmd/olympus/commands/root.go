// ABOUTME: Root command, global flags and shared setup for the Olympus CLI
// ABOUTME: Loads configuration once and opens the profile and plan store on demand
package commands

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/olympus/internal/config"
	"github.com/harper/olympus/internal/logging"
	"github.com/harper/olympus/internal/storage"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
 ██████╗ ██╗  ██╗   ██╗███╗   ███╗██████╗ ██╗   ██╗███████╗
██╔═══██╗██║  ╚██╗ ██╔╝████╗ ████║██╔══██╗██║   ██║██╔════╝
██║   ██║██║   ╚████╔╝ ██╔████╔██║██████╔╝██║   ██║███████╗
██║   ██║██║    ╚██╔╝  ██║╚██╔╝██║██╔═══╝ ██║   ██║╚════██║
╚██████╔╝███████╗██║   ██║ ╚═╝ ██║██║     ╚██████╔╝███████║
 ╚═════╝ ╚══════╝╚═╝   ╚═╝     ╚═╝╚═╝      ╚═════╝ ╚══════╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "olympus",
		Short: "Personal longevity protocol manager",
		Long: banner + `

Olympus keeps your profile, biometrics and a 7-day longevity protocol,
regenerates the protocol with an AI architect, imports data from Oura
and Apple Health, and talks to you through a realtime voice coach.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}
			switch outputFormat {
			case "auto", "json":
			default:
				return fmt.Errorf("--format must be auto or json, got %q", outputFormat)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging to stderr)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto or json")

	cmd.AddCommand(NewPlanCmd())
	cmd.AddCommand(NewGroceryCmd())
	cmd.AddCommand(NewProfileCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewOuraCmd())
	cmd.AddCommand(NewVaultCmd())
	cmd.AddCommand(NewCoachCmd())
	cmd.AddCommand(NewNotifyCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

var logOnce sync.Once

// loadConfig reads .env and the environment, and starts file logging the first time
func loadConfig() (*config.Config, error) {
	// Load .env file if it exists (for API keys)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logOnce.Do(func() {
		if err := logging.Init(logging.Config{Debug: cfg.Debug || verbose, LogDir: cfg.LogDir()}); err != nil && !quiet {
			fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
		}
	})
	return cfg, nil
}

// openStore loads configuration and opens the configured store
func openStore() (*storage.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, cfg, nil
}
