// ABOUTME: Transport contract between the coach session and a remote voice agent
// ABOUTME: Events carry audio, interruptions, tool calls and lifecycle signals
package realtime

import (
	"context"

	"github.com/harper/olympus/internal/tools"
)

// SessionConfig describes the agent the session talks to
type SessionConfig struct {
	Model        string
	Voice        string
	Instructions string
	Tools        []tools.Definition
}

// EventType classifies inbound events
type EventType int

const (
	// EventOpened is the remote acknowledgement of the session
	EventOpened EventType = iota
	// EventAudio carries a decoded PCM16 clip at PlaybackRate
	EventAudio
	// EventInterrupted asks the client to drop queued playback
	EventInterrupted
	// EventToolCall carries one structured tool invocation
	EventToolCall
	// EventError reports a remote failure; the session ends
	EventError
	// EventClosed reports that the remote side hung up
	EventClosed
)

func (t EventType) String() string {
	switch t {
	case EventOpened:
		return "opened"
	case EventAudio:
		return "audio"
	case EventInterrupted:
		return "interrupted"
	case EventToolCall:
		return "tool_call"
	case EventError:
		return "error"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ToolCall is a request from the agent to run a tool
type ToolCall struct {
	CallID    string
	Name      string
	Arguments []byte
}

// Event is one inbound message
type Event struct {
	Type  EventType
	Audio []byte
	Call  ToolCall
	Err   error
}

// Conn is an open session with the agent
type Conn interface {
	// SendAudio streams one PCM16 frame at the transport's input rate
	SendAudio(pcm []byte) error
	// SendToolResult acknowledges a tool call by its id
	SendToolResult(callID, output string) error
	// Events delivers inbound events; it is closed when the connection ends
	Events() <-chan Event
	Close() error
}

// Transport opens sessions
type Transport interface {
	Connect(ctx context.Context, cfg SessionConfig) (Conn, error)
	// InputRate is the sample rate outbound audio must be converted to
	InputRate() int
}
