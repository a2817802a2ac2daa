// ABOUTME: Realtime coach session: Idle -> Connecting -> Active state machine
// ABOUTME: A pure transition function plus one goroutine that consumes events and frames
package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/harper/olympus/internal/logging"
	"github.com/harper/olympus/internal/tools"
)

// ErrSessionBusy is returned by Start while a session is connecting or active
var ErrSessionBusy = errors.New("coach session already running")

// CoachInstructions is the persona given to the voice agent
const CoachInstructions = `You are 'Olympus', the user's high-end personal longevity coach.
You follow the research of David Sinclair and the Blueprint of Bryan Johnson.
You are an expert in bio-hacking, hormetic stress, and nutritional biochemistry.

Be supportive, precise, and scientifically rigorous.
If a user reports feeling fatigued, suggest shifting intensity or adjusting their NMN dosage/timing.`

// State is the session lifecycle state
type State int

const (
	Idle State = iota
	Connecting
	Active
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

type inputKind int

const (
	inStart inputKind = iota
	inStartFailed
	inOpened
	inAudioIn
	inAudioOut
	inInterrupted
	inToolCall
	inError
	inClosed
	inStop
)

// input is one thing that happened to the session
type input struct {
	kind  inputKind
	frame []float32
	audio []byte
	call  ToolCall
	err   error
}

type effectKind int

const (
	effSendAudio effectKind = iota
	effPlay
	effInterrupt
	effTool
	effRelease
)

// effect is work the runner performs after a transition
type effect struct {
	kind  effectKind
	frame []float32
	audio []byte
	call  ToolCall
}

// transition is the whole session protocol. It is pure: the next state and the effects
// depend only on the current state and the input.
func transition(s State, in input) (State, []effect) {
	switch s {
	case Idle:
		if in.kind == inStart {
			return Connecting, nil
		}
		return Idle, nil

	case Connecting, Active:
		switch in.kind {
		case inOpened:
			return Active, nil
		case inAudioIn:
			if s != Active {
				return s, nil
			}
			return s, []effect{{kind: effSendAudio, frame: in.frame}}
		case inAudioOut:
			return s, []effect{{kind: effPlay, audio: in.audio}}
		case inInterrupted:
			return s, []effect{{kind: effInterrupt}}
		case inToolCall:
			return s, []effect{{kind: effTool, call: in.call}}
		case inStartFailed, inError, inClosed, inStop:
			return Idle, []effect{{kind: effRelease}}
		}
	}
	return s, nil
}

// ToolDispatcher runs tool calls against the live store
type ToolDispatcher interface {
	Dispatch(ctx context.Context, name string, rawArgs []byte) (tools.Result, error)
}

// Options wires a session to its collaborators
type Options struct {
	Transport     Transport
	Source        AudioSource
	Sink          AudioSink
	Tools         ToolDispatcher
	Config        SessionConfig
	Clock         Clock
	OnStateChange func(State)
}

// Session is one realtime coaching conversation. Start and Stop may be called from any
// goroutine; all event handling happens on the session's own goroutine.
type Session struct {
	opts Options

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
}

// NewSession creates an idle session
func NewSession(opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = NewSystemClock()
	}
	if opts.Config.Instructions == "" {
		opts.Config.Instructions = CoachInstructions
	}
	if opts.Config.Tools == nil {
		opts.Config.Tools = tools.Definitions()
	}
	return &Session{opts: opts}
}

// Status returns the current state
func (s *Session) Status() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that ended the last session, if any
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Done is closed when the running session returns to Idle. It is nil before Start.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// step applies one input under the lock and reports the new state and its effects.
// Reaching Idle clears the cancel func in the same critical section so a later Start
// cannot be cancelled by this run.
func (s *Session) step(in input) (State, bool, []effect) {
	s.mu.Lock()
	prev := s.state
	next, effects := transition(prev, in)
	s.state = next
	if in.err != nil {
		s.lastErr = in.err
	}
	var cancel context.CancelFunc
	if next == Idle && prev != Idle {
		cancel, s.cancel = s.cancel, nil
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return next, next != prev, effects
}

func (s *Session) notify(st State) {
	logging.Debug("coach session state", "state", st.String())
	if s.opts.OnStateChange != nil {
		s.opts.OnStateChange(st)
	}
}

// Start acquires audio capture and connects to the agent. It returns once the
// connection is dialed; the session becomes Active when the agent acknowledges it.
// Failure to open capture or to connect leaves the session Idle.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return ErrSessionBusy
	}
	s.state, _ = transition(s.state, input{kind: inStart})
	s.lastErr = nil
	s.mu.Unlock()
	s.notify(Connecting)

	frames, err := s.opts.Source.Open(ctx)
	if err != nil {
		s.abort(err)
		return fmt.Errorf("failed to open audio capture: %w", err)
	}

	conn, err := s.opts.Transport.Connect(ctx, s.opts.Config)
	if err != nil {
		_ = s.opts.Source.Close()
		s.abort(err)
		return fmt.Errorf("failed to connect coach session: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	player := NewPlayer(s.opts.Sink, s.opts.Clock, PlaybackRate)

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(runCtx, conn, frames, player, done)
	return nil
}

// abort returns a session that never got connected to Idle
func (s *Session) abort(err error) {
	s.mu.Lock()
	s.state, _ = transition(s.state, input{kind: inStartFailed})
	s.lastErr = err
	s.mu.Unlock()
	logging.Warn("coach session failed to start", "err", err)
	s.notify(Idle)
}

// Stop ends the session and waits for resources to be released. Stopping an idle
// session is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Session) run(ctx context.Context, conn Conn, frames <-chan []float32, player *Player, done chan struct{}) {
	defer close(done)

	events := conn.Events()
	for {
		var capture <-chan []float32
		if s.Status() == Active {
			capture = frames
		}

		var in input
		select {
		case <-ctx.Done():
			in = input{kind: inStop}
		case ev, ok := <-events:
			if !ok {
				in = input{kind: inClosed}
				break
			}
			in = fromEvent(ev)
		case frame, ok := <-capture:
			if !ok {
				logging.Debug("audio capture ended")
				frames = nil
				continue
			}
			in = input{kind: inAudioIn, frame: frame}
		}

		next, changed, effects := s.step(in)
		for _, eff := range effects {
			s.apply(ctx, eff, conn, player)
		}
		if changed {
			s.notify(next)
		}

		if next == Idle {
			return
		}
	}
}

func fromEvent(ev Event) input {
	switch ev.Type {
	case EventOpened:
		return input{kind: inOpened}
	case EventAudio:
		return input{kind: inAudioOut, audio: ev.Audio}
	case EventInterrupted:
		return input{kind: inInterrupted}
	case EventToolCall:
		return input{kind: inToolCall, call: ev.Call}
	case EventError:
		err := ev.Err
		if err == nil {
			err = errors.New("realtime session error")
		}
		return input{kind: inError, err: err}
	default:
		return input{kind: inClosed}
	}
}

func (s *Session) apply(ctx context.Context, eff effect, conn Conn, player *Player) {
	switch eff.kind {
	case effSendAudio:
		pcm := FloatToPCM16(Resample(eff.frame, CaptureRate, s.opts.Transport.InputRate()))
		if err := conn.SendAudio(pcm); err != nil {
			logging.Warn("failed to send audio frame", "err", err)
		}

	case effPlay:
		player.Enqueue(eff.audio)

	case effInterrupt:
		player.Interrupt()

	case effTool:
		// The dispatcher reads the store at call time, never a copy taken at Start.
		if _, err := s.opts.Tools.Dispatch(context.WithoutCancel(ctx), eff.call.Name, eff.call.Arguments); err != nil {
			logging.Warn("tool call rejected", "tool", eff.call.Name, "call_id", eff.call.CallID, "err", err)
		}
		if err := conn.SendToolResult(eff.call.CallID, tools.AckOutput); err != nil {
			logging.Warn("failed to acknowledge tool call", "call_id", eff.call.CallID, "err", err)
		}

	case effRelease:
		player.Interrupt()
		if err := s.opts.Source.Close(); err != nil {
			logging.Warn("failed to release audio capture", "err", err)
		}
		if err := s.opts.Sink.Close(); err != nil {
			logging.Warn("failed to release audio playback", "err", err)
		}
		if err := conn.Close(); err != nil {
			logging.Debug("realtime connection close", "err", err)
		}
	}
}
