// ABOUTME: Shared helpers for command tests
// ABOUTME: Runs the root command against a throwaway sqlite data directory

package commands

import (
	"bytes"
	"testing"
	"time"
)

// runCLI executes the root command with args against dataDir and returns its output
func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("OLYMPUS_BACKEND", "sqlite")
	t.Setenv("OLYMPUS_DATA_DIR", dataDir)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OURA_TOKEN", "")

	cmd := NewRootCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return output.String(), err
}

// fixClock pins the package clock for the duration of the test
func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	original := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = original })
}
