// ABOUTME: Terminal and log notifiers for activity alerts
// ABOUTME: The terminal notifier rings the bell and prints a styled line
package notify

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/harper/olympus/internal/logging"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D4AF37"))
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// TerminalNotifier prints alerts to a terminal
type TerminalNotifier struct {
	Out  io.Writer
	Bell bool
	// Allowed answers RequestPermission; nil means allowed
	Allowed func() bool
}

func (n *TerminalNotifier) RequestPermission() bool {
	if n.Allowed == nil {
		return true
	}
	return n.Allowed()
}

func (n *TerminalNotifier) Notify(a Alert) error {
	bell := ""
	if n.Bell {
		bell = "\a"
	}
	_, err := fmt.Fprintf(n.Out, "%s%s %s %s\n", bell,
		timeStyle.Render(time.Now().Format("15:04")), titleStyle.Render(a.Title), a.Body)
	return err
}

// LogNotifier records alerts in the application log
type LogNotifier struct{}

func (LogNotifier) RequestPermission() bool { return true }

func (LogNotifier) Notify(a Alert) error {
	logging.Info(a.Title, "body", a.Body, "day", a.Day, "id", a.ItemID)
	return nil
}

// Multi fans alerts out to several notifiers. Permission is granted when any member
// grants it, and only granting members receive alerts.
type Multi struct {
	Notifiers []Notifier
	granted   []Notifier
}

func (m *Multi) RequestPermission() bool {
	m.granted = m.granted[:0]
	for _, n := range m.Notifiers {
		if n.RequestPermission() {
			m.granted = append(m.granted, n)
		}
	}
	return len(m.granted) > 0
}

func (m *Multi) Notify(a Alert) error {
	var firstErr error
	for _, n := range m.granted {
		if err := n.Notify(a); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
