// ABOUTME: CLI command that runs a realtime voice session with the Olympus coach
// ABOUTME: Streams raw PCM16 in and out so any recorder or player can be piped in
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/olympus/internal/models"
	"github.com/harper/olympus/internal/realtime"
	"github.com/harper/olympus/internal/storage"
	"github.com/harper/olympus/internal/tools"
)

var (
	coachInput  string
	coachOutput string
	coachPaced  bool
)

// NewCoachCmd creates the coach command
func NewCoachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Talk to the Olympus voice coach",
		Long: `Start a realtime voice conversation with the Olympus coach.

Microphone audio is read as raw 16-bit mono PCM at 16 kHz and the coach's
voice is written as raw 16-bit mono PCM at 24 kHz. The coach can mark
activities complete and rewrite a day of your protocol while you talk.

Requires OPENAI_API_KEY. Press Ctrl-C to end the session.`,
		Example: `  # Linux with ALSA
  arecord -q -f S16_LE -r 16000 -c 1 -t raw | olympus coach --output - | aplay -q -f S16_LE -r 24000 -c 1 -t raw

  # Replay a recording and save the reply
  olympus coach --input question.pcm --paced --output reply.pcm`,
		RunE: runCoach,
	}

	cmd.Flags().StringVar(&coachInput, "input", "-", "Capture source: raw PCM16 file or - for stdin")
	cmd.Flags().StringVar(&coachOutput, "output", "-", "Playback sink: raw PCM16 file or - for stdout")
	cmd.Flags().BoolVar(&coachPaced, "paced", false, "Release file input in real time")

	return cmd
}

func runCoach(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY not set")
	}

	source := &realtime.StreamSource{Path: coachInput, Paced: coachPaced}
	sink := &realtime.StreamSink{Path: coachOutput}
	defer sink.Close()

	// stdout may be carrying audio, so status goes to stderr
	status := cmd.ErrOrStderr()

	session := realtime.NewSession(realtime.Options{
		Transport: &realtime.OpenAITransport{URL: cfg.RealtimeURL, APIKey: cfg.OpenAIKey},
		Source:    source,
		Sink:      sink,
		Tools:     tools.NewDispatcher(store),
		Config: realtime.SessionConfig{
			Model: cfg.RealtimeModel,
			Voice: cfg.Voice,
		},
		OnStateChange: func(st realtime.State) {
			if !quiet {
				fmt.Fprintf(status, "coach: %s\n", st)
			}
		},
	})

	if !quiet {
		unsubscribe := store.Subscribe(progressReporter(status))
		defer unsubscribe()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		session.Stop()
	case <-session.Done():
	}

	if err := session.Err(); err != nil {
		return fmt.Errorf("coach session ended: %w", err)
	}
	return nil
}

// progressReporter prints today's completion after each plan change the coach makes
func progressReporter(w io.Writer) func(storage.Snapshot) {
	return func(snap storage.Snapshot) {
		t := now()
		day := models.WeekdayName(t)
		daily, ok := snap.Plan.Day(day)
		if !ok {
			return
		}
		done, total := daily.Progress()
		fmt.Fprintf(w, "coach: plan updated, %s %d/%d complete\n", day, done, total)
	}
}
