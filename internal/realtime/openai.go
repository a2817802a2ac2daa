// ABOUTME: Realtime transport for the OpenAI Realtime API over a websocket
// ABOUTME: Maps realtime JSON events to session events and back
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harper/olympus/internal/logging"
)

const (
	// DefaultRealtimeURL is the OpenAI realtime endpoint
	DefaultRealtimeURL = "wss://api.openai.com/v1/realtime"
	// DefaultRealtimeModel is the default voice model
	DefaultRealtimeModel = "gpt-4o-realtime-preview"
	// DefaultVoice is the default voice preset
	DefaultVoice = "alloy"

	openAIInputRate = 24000
	writeTimeout    = 10 * time.Second
)

// OpenAITransport connects to the OpenAI Realtime API
type OpenAITransport struct {
	URL    string
	APIKey string
	Dialer *websocket.Dialer
}

// InputRate is the pcm16 rate the realtime API expects
func (t *OpenAITransport) InputRate() int {
	return openAIInputRate
}

// Connect dials the endpoint and configures the session
func (t *OpenAITransport) Connect(ctx context.Context, cfg SessionConfig) (Conn, error) {
	if t.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	endpoint := t.URL
	if endpoint == "" {
		endpoint = DefaultRealtimeURL
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid realtime url: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultRealtimeModel
	}
	q := u.Query()
	q.Set("model", model)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+t.APIKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	dialer := t.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	ws, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("realtime handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to realtime endpoint: %w", err)
	}

	c := &openAIConn{
		ws:     ws,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	if err := c.write(sessionUpdate(cfg)); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("failed to configure realtime session: %w", err)
	}
	go c.readLoop()
	return c, nil
}

type openAIConn struct {
	ws     *websocket.Conn
	events chan Event

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// serverEvent covers the fields of every inbound event type we handle
type serverEvent struct {
	Type      string `json:"type"`
	Delta     string `json:"delta"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Error     *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func sessionUpdate(cfg SessionConfig) map[string]interface{} {
	voice := cfg.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	toolDefs := make([]map[string]interface{}, 0, len(cfg.Tools))
	for _, d := range cfg.Tools {
		toolDefs = append(toolDefs, map[string]interface{}{
			"type":        "function",
			"name":        d.Name,
			"description": d.Description,
			"parameters":  d.Parameters,
		})
	}
	return map[string]interface{}{
		"type": "session.update",
		"session": map[string]interface{}{
			"modalities":          []string{"audio", "text"},
			"instructions":        cfg.Instructions,
			"voice":               voice,
			"input_audio_format":  "pcm16",
			"output_audio_format": "pcm16",
			"turn_detection":      map[string]interface{}{"type": "server_vad"},
			"tools":               toolDefs,
			"tool_choice":         "auto",
		},
	}
}

func (c *openAIConn) write(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

// SendAudio appends one frame to the input audio buffer
func (c *openAIConn) SendAudio(pcm []byte) error {
	return c.write(map[string]interface{}{
		"type":  "input_audio_buffer.append",
		"audio": EncodeAudio(pcm),
	})
}

// SendToolResult posts the function output and asks the agent to continue
func (c *openAIConn) SendToolResult(callID, output string) error {
	if err := c.write(map[string]interface{}{
		"type": "conversation.item.create",
		"item": map[string]interface{}{
			"type":    "function_call_output",
			"call_id": callID,
			"output":  output,
		},
	}); err != nil {
		return err
	}
	return c.write(map[string]interface{}{"type": "response.create"})
}

func (c *openAIConn) Events() <-chan Event {
	return c.events
}

// Close hangs up. Safe to call more than once.
func (c *openAIConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

func (c *openAIConn) emit(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

func (c *openAIConn) readLoop() {
	defer close(c.events)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.emit(Event{Type: EventClosed})
			} else {
				c.emit(Event{Type: EventError, Err: fmt.Errorf("realtime connection lost: %w", err)})
			}
			return
		}

		var msg serverEvent
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.Warn("undecodable realtime event", "err", err)
			continue
		}

		ev, ok := translate(msg)
		if !ok {
			continue
		}
		if !c.emit(ev) {
			return
		}
	}
}

// translate maps a server event to a session event; unhandled types report false
func translate(msg serverEvent) (Event, bool) {
	switch msg.Type {
	case "session.created":
		return Event{Type: EventOpened}, true
	case "response.audio.delta":
		pcm, err := DecodeAudio(msg.Delta)
		if err != nil {
			logging.Warn("undecodable audio delta", "err", err)
			return Event{}, false
		}
		return Event{Type: EventAudio, Audio: pcm}, true
	case "input_audio_buffer.speech_started":
		return Event{Type: EventInterrupted}, true
	case "response.function_call_arguments.done":
		return Event{Type: EventToolCall, Call: ToolCall{
			CallID:    msg.CallID,
			Name:      msg.Name,
			Arguments: []byte(msg.Arguments),
		}}, true
	case "error":
		text := "unknown realtime error"
		if msg.Error != nil && msg.Error.Message != "" {
			text = msg.Error.Message
		}
		return Event{Type: EventError, Err: errors.New(text)}, true
	default:
		return Event{}, false
	}
}
