package stream

import (
	"context"
	"sync"
	"time"

	"github.com/matt-g-everett/termtx/frame"
	"pkt.systems/pslog"
)

// A Sink draws the views produced by a Player. Render calls are serialised;
// a sink must not call back into the Player that feeds it.
type Sink interface {
	Render(View)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(View)

// Render implements Sink.
func (f SinkFunc) Render(v View) { f(v) }

// PlayerOptions configure a Player.
type PlayerOptions struct {
	Clock     Options
	Title     string
	Time      TimeProvider
	NewTicker func(interval time.Duration) Ticker
}

// Player drives a Clock from a tick source and pushes frame changes to its
// sinks. The tick source exists only while the clock is playing: it is
// released on pause, at the end of a non-looping sequence, when the frames
// or options change, and on Close. Every call that releases it returns only
// after the tick goroutine has exited.
type Player struct {
	mu       sync.Mutex
	emitMu   sync.Mutex
	clock    *Clock
	opts     PlayerOptions
	log      pslog.Logger
	sinks    map[int]Sink
	nextSink int
	last     View
	lastSeq  uint64
	tick     *tickSource
	closed   bool
}

type tickSource struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPlayer creates a Player over seq. Call Start to begin ticking when the
// clock auto-starts.
func NewPlayer(ctx context.Context, seq *frame.Sequence, opts PlayerOptions) *Player {
	p := new(Player)
	if opts.Time == nil {
		opts.Time = SystemTime{}
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewTimeTicker
	}
	p.opts = opts
	p.log = pslog.Ctx(ctx).With("title", opts.Title)
	p.sinks = make(map[int]Sink)
	p.clock = NewClock(seq, p.clockOptions(opts.Clock), opts.Time.Now())
	p.last = ViewOf(p.clock, opts.Title)
	p.lastSeq = seq.ID()
	return p
}

func (p *Player) clockOptions(o Options) Options {
	hook := o.OnTransition
	o.OnTransition = func(t Transition) {
		p.log.Debug("clock transition",
			"from", t.From.String(),
			"to", t.To.String(),
			"index", t.Index,
			"reason", t.Reason)
		if hook != nil {
			hook(t)
		}
	}
	return o
}

// Start acquires the tick source if the clock is already playing.
func (p *Player) Start() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.clock.Playing() {
		p.acquire()
	}
	p.emitLocked()
}

// Play starts or resumes playback.
func (p *Player) Play() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.clock.Play(p.opts.Time.Now()) {
		p.acquire()
	}
	p.emitLocked()
}

// Pause freezes playback on the current frame.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.clock.Pause(p.opts.Time.Now())
	done := p.release()
	p.emitLocked()
	wait(done)
}

// Toggle flips between playing and paused.
func (p *Player) Toggle() {
	p.mu.Lock()
	playing := p.clock.Playing()
	p.mu.Unlock()
	if playing {
		p.Pause()
		return
	}
	p.Play()
}

// Reset rewinds to the first frame without changing the transport state.
func (p *Player) Reset() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.clock.Reset()
	p.emitLocked()
}

// SetSequence swaps in a new animation. A sequence that is already playing
// is ignored.
func (p *Player) SetSequence(seq *frame.Sequence) {
	p.mu.Lock()
	if p.closed || !p.clock.SetSequence(seq, p.opts.Time.Now()) {
		p.mu.Unlock()
		return
	}
	done := p.release()
	if p.clock.Playing() {
		p.acquire()
	}
	p.emitLocked()
	wait(done)
}

// Reconfigure replaces the clock options. Playback restarts from the first
// frame; the clock plays again only if the new options auto-start.
func (p *Player) Reconfigure(opts Options) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	done := p.release()
	p.opts.Clock = opts
	p.clock = NewClock(p.clock.Sequence(), p.clockOptions(opts), p.opts.Time.Now())
	if p.clock.Playing() {
		p.acquire()
	}
	p.emitLocked()
	wait(done)
}

// Subscribe adds a sink and immediately renders the current view to it. The
// returned function removes the sink.
func (p *Player) Subscribe(s Sink) func() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return func() {}
	}
	id := p.nextSink
	p.nextSink++
	p.sinks[id] = s
	v := ViewOf(p.clock, p.opts.Title)
	p.emitMu.Lock()
	p.mu.Unlock()
	s.Render(v)
	p.emitMu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.sinks, id)
		p.mu.Unlock()
	}
}

// View returns the current view.
func (p *Player) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ViewOf(p.clock, p.opts.Title)
}

// State returns the clock's transport state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clock.State()
}

// Close stops the tick source and drops all sinks. No sink is called after
// Close returns.
func (p *Player) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	done := p.release()
	p.sinks = nil
	p.mu.Unlock()
	wait(done)

	// Wait out a render still in flight on another goroutine.
	p.emitMu.Lock()
	p.emitMu.Unlock() //nolint:staticcheck
	p.log.Debug("player closed")
}

// acquire starts the tick goroutine. p.mu must be held.
func (p *Player) acquire() {
	if p.tick != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	ts := &tickSource{cancel: cancel, done: make(chan struct{})}
	p.tick = ts
	t := p.opts.NewTicker(p.clock.TickInterval())
	go p.run(ctx, ts, t)
}

// release cancels the tick goroutine and returns a channel closed once it has
// exited. p.mu must be held.
func (p *Player) release() <-chan struct{} {
	ts := p.tick
	if ts == nil {
		return nil
	}
	p.tick = nil
	ts.cancel()
	return ts.done
}

func (p *Player) run(ctx context.Context, ts *tickSource, t Ticker) {
	defer close(ts.done)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if !p.onTick(ctx, ts) {
				return
			}
		}
	}
}

func (p *Player) onTick(ctx context.Context, ts *tickSource) bool {
	p.mu.Lock()
	if ctx.Err() != nil {
		p.mu.Unlock()
		return false
	}
	p.clock.Tick(p.opts.Time.Now())
	playing := p.clock.Playing()
	if !playing && p.tick == ts {
		p.tick = nil
		ts.cancel()
	}
	p.emitLocked()
	return playing
}

// emitLocked renders the current view to every sink when it differs from
// the last one emitted. It must be called with p.mu held and releases it.
func (p *Player) emitLocked() {
	v := ViewOf(p.clock, p.opts.Title)
	seq := p.clock.Sequence().ID()
	if seq == p.lastSeq && v.Index == p.last.Index &&
		v.State == p.last.State && v.Total == p.last.Total {
		p.mu.Unlock()
		return
	}
	p.last = v
	p.lastSeq = seq
	sinks := make([]Sink, 0, len(p.sinks))
	for _, s := range p.sinks {
		sinks = append(sinks, s)
	}

	p.emitMu.Lock()
	p.mu.Unlock()
	defer p.emitMu.Unlock()
	for _, s := range sinks {
		s.Render(v)
	}
}

func wait(done <-chan struct{}) {
	if done != nil {
		<-done
	}
}
