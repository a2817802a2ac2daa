// ABOUTME: CLI command that watches the protocol and raises alerts when items are due
// ABOUTME: Re-reads the stored plan every tick so edits from other commands are seen
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/harper/olympus/internal/models"
	"github.com/harper/olympus/internal/notify"
	"github.com/harper/olympus/internal/storage"
)

var (
	notifyYes  bool
	notifyBell bool
)

// NewNotifyCmd creates the notify command group
func NewNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Activity alerts for the current protocol",
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Alert when an incomplete activity is due",
		Long: `Watch today's protocol and raise an alert whenever an incomplete
activity reaches its scheduled time (HH:MM). Alerts are also written to
the log file. Runs until interrupted.`,
		RunE: runNotifyWatch,
	}
	watchCmd.Flags().BoolVarP(&notifyYes, "yes", "y", false, "Allow terminal alerts without asking")
	watchCmd.Flags().BoolVar(&notifyBell, "bell", true, "Ring the terminal bell on each alert")

	cmd.AddCommand(watchCmd)
	return cmd
}

// backendSource reads the plan straight from the backend so writes made by other
// processes show up on the next tick
type backendSource struct {
	backend storage.Backend
}

func (b backendSource) Get() (models.UserProfile, models.LongevityPlan) {
	return storage.New(b.backend).Get()
}

// askPermission asks once whether terminal alerts are allowed
func askPermission() bool {
	if notifyYes {
		return true
	}
	allowed := true
	err := huh.NewConfirm().
		Title("Allow Olympus to alert you in this terminal?").
		Affirmative("Allow").
		Negative("Deny").
		Value(&allowed).
		Run()
	if err != nil {
		return !errors.Is(err, huh.ErrUserAborted) && allowed
	}
	return allowed
}

func runNotifyWatch(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	notifier := &notify.Multi{Notifiers: []notify.Notifier{
		&notify.TerminalNotifier{Out: cmd.OutOrStdout(), Bell: notifyBell, Allowed: askPermission},
		notify.LogNotifier{},
	}}

	scheduler := notify.NewScheduler(backendSource{backend: store.Backend()}, notifier)
	scheduler.Interval = cfg.NotifyInterval

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Watching your protocol (every %s). Press Ctrl-C to stop.\n", cfg.NotifyInterval)
	}

	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
