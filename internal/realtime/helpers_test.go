// ABOUTME: Test doubles for the realtime package
// ABOUTME: Manual clock, in-memory sink and a scriptable transport
package realtime

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/harper/olympus/internal/tools"
)

// fakeClock only moves when Advance is called
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward by d, firing due timers in order
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at < c.timers[j].at })
		var next *fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && t.at <= target {
				next = t
				break
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		if next.at > c.now {
			c.now = next.at
		}
		c.mu.Unlock()
		next.f()
	}
}

// memorySink records what it plays
type memorySink struct {
	mu     sync.Mutex
	clips  [][]byte
	at     []time.Duration
	clock  Clock
	closed bool
}

func (s *memorySink) Play(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips = append(s.clips, pcm)
	if s.clock != nil {
		s.at = append(s.at, s.clock.Now())
	}
	return nil
}

func (s *memorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *memorySink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *memorySink) played() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clips)
}

// chanSource hands out a channel the test writes frames to
type chanSource struct {
	mu      sync.Mutex
	frames  chan []float32
	openErr error
	closed  int
}

func newChanSource() *chanSource {
	return &chanSource{frames: make(chan []float32, 8)}
}

func (s *chanSource) Open(ctx context.Context) (<-chan []float32, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return s.frames, nil
}

func (s *chanSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *chanSource) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// fakeConn is driven by the test through its events channel
type fakeConn struct {
	mu        sync.Mutex
	events    chan Event
	audio     [][]byte
	results   []string
	closed    bool
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{events: make(chan Event, 16)}
}

func (c *fakeConn) SendAudio(pcm []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audio = append(c.audio, pcm)
	return nil
}

func (c *fakeConn) SendToolResult(callID, output string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, callID+"="+output)
	return nil
}

func (c *fakeConn) Events() <-chan Event { return c.events }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// hangUp closes the event stream as a remote close would
func (c *fakeConn) hangUp() {
	c.closeOnce.Do(func() { close(c.events) })
}

func (c *fakeConn) snapshot() (audio int, results []string, closed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.audio), append([]string(nil), c.results...), c.closed
}

type fakeTransport struct {
	conn       *fakeConn
	connectErr error
	configs    []SessionConfig
}

func (t *fakeTransport) Connect(ctx context.Context, cfg SessionConfig) (Conn, error) {
	t.configs = append(t.configs, cfg)
	if t.connectErr != nil {
		return nil, t.connectErr
	}
	return t.conn, nil
}

func (t *fakeTransport) InputRate() int { return 24000 }

// recordingTools records dispatched calls
type recordingTools struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingTools) Dispatch(ctx context.Context, name string, rawArgs []byte) (tools.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
	if r.err != nil {
		return tools.Result{}, r.err
	}
	return tools.Result{Output: tools.AckOutput, Matched: true}, nil
}

var errBoom = errors.New("boom")
