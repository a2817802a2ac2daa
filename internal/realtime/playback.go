// ABOUTME: Gapless playback scheduler for inbound audio clips
// ABOUTME: Tracks a next-start cursor; interruption cancels every pending clip
package realtime

import (
	"sort"
	"time"
)

// Clip is one scheduled chunk of inbound audio
type Clip struct {
	ID       int
	Start    time.Duration
	Duration time.Duration
}

// End is the instant the clip finishes playing
func (c Clip) End() time.Duration {
	return c.Start + c.Duration
}

// Playback assigns start times to clips so they play back to back without overlap.
// When the cursor has fallen behind the clock the next clip starts immediately.
// Playback is not safe for concurrent use; Player serializes access to it.
type Playback struct {
	clock   Clock
	cursor  time.Duration
	pending map[int]Clip
	nextID  int
}

// NewPlayback creates an empty scheduler on clock
func NewPlayback(clock Clock) *Playback {
	return &Playback{clock: clock, pending: make(map[int]Clip)}
}

// Schedule reserves the next slot for a clip of length d
func (p *Playback) Schedule(d time.Duration) Clip {
	start := p.cursor
	if now := p.clock.Now(); now > start {
		start = now
	}
	p.nextID++
	clip := Clip{ID: p.nextID, Start: start, Duration: d}
	p.cursor = clip.End()
	p.pending[clip.ID] = clip
	return clip
}

// Clip returns a pending clip by id
func (p *Playback) Clip(id int) (Clip, bool) {
	c, ok := p.pending[id]
	return c, ok
}

// Finished drops a clip that has played out
func (p *Playback) Finished(id int) {
	delete(p.pending, id)
}

// Interrupt cancels every pending clip and resets the cursor to zero.
// It returns the clips that were cancelled.
func (p *Playback) Interrupt() []Clip {
	stopped := p.Pending()
	p.pending = make(map[int]Clip)
	p.cursor = 0
	return stopped
}

// Pending lists scheduled or playing clips ordered by start time
func (p *Playback) Pending() []Clip {
	out := make([]Clip, 0, len(p.pending))
	for _, c := range p.pending {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Cursor is the earliest start time for the next clip
func (p *Playback) Cursor() time.Duration {
	return p.cursor
}
