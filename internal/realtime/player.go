// ABOUTME: Player feeds inbound audio clips to a sink at their scheduled times
// ABOUTME: Interrupt stops every pending clip at once
package realtime

import (
	"sync"

	"github.com/harper/olympus/internal/logging"
)

// Player drives an AudioSink from a Playback schedule
type Player struct {
	mu       sync.Mutex
	sink     AudioSink
	clock    Clock
	rate     int
	playback *Playback
	timers   map[int]Timer
}

// NewPlayer creates a player for PCM16 clips at rate
func NewPlayer(sink AudioSink, clock Clock, rate int) *Player {
	return &Player{
		sink:     sink,
		clock:    clock,
		rate:     rate,
		playback: NewPlayback(clock),
		timers:   make(map[int]Timer),
	}
}

// Enqueue schedules pcm to play right after everything already queued
func (p *Player) Enqueue(pcm []byte) Clip {
	p.mu.Lock()
	defer p.mu.Unlock()

	clip := p.playback.Schedule(ClipDuration(len(pcm), p.rate))
	delay := clip.Start - p.clock.Now()
	if delay < 0 {
		delay = 0
	}
	p.timers[clip.ID] = p.clock.AfterFunc(delay, func() { p.begin(clip.ID, pcm) })
	return clip
}

func (p *Player) begin(id int, pcm []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clip, ok := p.playback.Clip(id)
	if !ok {
		return
	}
	if err := p.sink.Play(pcm); err != nil {
		logging.Warn("audio playback failed", "clip", id, "err", err)
	}
	p.timers[id] = p.clock.AfterFunc(clip.Duration, func() { p.finish(id) })
}

func (p *Player) finish(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.timers, id)
	p.playback.Finished(id)
}

// Interrupt stops all scheduled and playing clips and resets the timeline cursor
func (p *Player) Interrupt() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range p.timers {
		t.Stop()
	}
	p.timers = make(map[int]Timer)
	stopped := p.playback.Interrupt()
	if len(stopped) > 0 {
		logging.Debug("playback interrupted", "clips", len(stopped))
	}
}

// Pending lists clips that are scheduled or playing
func (p *Player) Pending() []Clip {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playback.Pending()
}
