// ABOUTME: Tests for the OpenAI realtime transport against a local websocket server
// ABOUTME: Checks the handshake headers, session.update, event mapping and tool acks
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/olympus/internal/tools"
)

// fakeRealtimeServer upgrades one connection and hands it to script
func fakeRealtimeServer(t *testing.T, script func(ws *websocket.Conn, r *http.Request)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		script(ws, r)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readType(t *testing.T, ws *websocket.Conn) map[string]interface{} {
	t.Helper()
	var msg map[string]interface{}
	if err := ws.ReadJSON(&msg); err != nil {
		t.Errorf("server read failed: %v", err)
	}
	return msg
}

func nextEvent(t *testing.T, conn Conn) Event {
	t.Helper()
	select {
	case ev, ok := <-conn.Events():
		require.True(t, ok, "event stream closed early")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestOpenAITransport_EventMapping(t *testing.T) {
	serverDone := make(chan map[string]interface{}, 8)
	url := fakeRealtimeServer(t, func(ws *websocket.Conn, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "realtime=v1", r.Header.Get("OpenAI-Beta"))
		assert.Equal(t, DefaultRealtimeModel, r.URL.Query().Get("model"))

		update := readType(t, ws)
		serverDone <- update

		pcm := FloatToPCM16([]float32{0.25, -0.25})
		_ = ws.WriteJSON(map[string]string{"type": "session.created"})
		_ = ws.WriteJSON(map[string]string{"type": "response.audio.delta", "delta": EncodeAudio(pcm)})
		_ = ws.WriteJSON(map[string]string{"type": "rate_limits.updated"})
		_ = ws.WriteJSON(map[string]string{"type": "input_audio_buffer.speech_started"})
		_ = ws.WriteJSON(map[string]string{
			"type": "response.function_call_arguments.done", "call_id": "call_9",
			"name": tools.MarkActivityComplete, "arguments": `{"day":"Monday","id":"1","completed":true}`,
		})

		appendMsg := readType(t, ws)
		serverDone <- appendMsg
		item := readType(t, ws)
		serverDone <- item
		respCreate := readType(t, ws)
		serverDone <- respCreate

		_ = ws.WriteJSON(map[string]interface{}{"type": "error", "error": map[string]string{"message": "quota exceeded"}})
		_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		time.Sleep(50 * time.Millisecond)
	})

	transport := &OpenAITransport{URL: url, APIKey: "sk-test"}
	assert.Equal(t, 24000, transport.InputRate())

	conn, err := transport.Connect(context.Background(), SessionConfig{
		Instructions: CoachInstructions,
		Tools:        tools.Definitions(),
	})
	require.NoError(t, err)
	defer conn.Close()

	update := <-serverDone
	assert.Equal(t, "session.update", update["type"])
	session := update["session"].(map[string]interface{})
	assert.Equal(t, "pcm16", session["input_audio_format"])
	assert.Equal(t, DefaultVoice, session["voice"])
	assert.Len(t, session["tools"], 2)

	assert.Equal(t, EventOpened, nextEvent(t, conn).Type)

	audio := nextEvent(t, conn)
	require.Equal(t, EventAudio, audio.Type)
	assert.Len(t, audio.Audio, 4)

	assert.Equal(t, EventInterrupted, nextEvent(t, conn).Type)

	call := nextEvent(t, conn)
	require.Equal(t, EventToolCall, call.Type)
	assert.Equal(t, "call_9", call.Call.CallID)
	assert.Equal(t, tools.MarkActivityComplete, call.Call.Name)
	assert.JSONEq(t, `{"day":"Monday","id":"1","completed":true}`, string(call.Call.Arguments))

	require.NoError(t, conn.SendAudio([]byte{1, 0, 2, 0}))
	require.NoError(t, conn.SendToolResult("call_9", tools.AckOutput))

	appendMsg := <-serverDone
	assert.Equal(t, "input_audio_buffer.append", appendMsg["type"])
	assert.Equal(t, EncodeAudio([]byte{1, 0, 2, 0}), appendMsg["audio"])

	item := <-serverDone
	assert.Equal(t, "conversation.item.create", item["type"])
	raw, _ := json.Marshal(item["item"])
	assert.JSONEq(t, `{"type":"function_call_output","call_id":"call_9","output":"{\"result\":\"ok\"}"}`, string(raw))
	assert.Equal(t, "response.create", (<-serverDone)["type"])

	errEv := nextEvent(t, conn)
	require.Equal(t, EventError, errEv.Type)
	assert.EqualError(t, errEv.Err, "quota exceeded")

	assert.Equal(t, EventClosed, nextEvent(t, conn).Type)
}

func TestOpenAITransport_ConnectFailures(t *testing.T) {
	_, err := (&OpenAITransport{URL: "ws://127.0.0.1:1"}).Connect(context.Background(), SessionConfig{})
	assert.Error(t, err, "missing key")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	transport := &OpenAITransport{URL: "ws" + strings.TrimPrefix(srv.URL, "http"), APIKey: "bad"}
	_, err = transport.Connect(context.Background(), SessionConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTranslate_IgnoresUnknown(t *testing.T) {
	_, ok := translate(serverEvent{Type: "response.text.delta"})
	assert.False(t, ok)

	_, ok = translate(serverEvent{Type: "response.audio.delta", Delta: "***"})
	assert.False(t, ok)

	ev, ok := translate(serverEvent{Type: "error"})
	require.True(t, ok)
	assert.Error(t, ev.Err)
}
