package stream

import (
	"time"

	"github.com/matt-g-everett/termtx/frame"
)

// State is the transport state of a Clock.
type State int

const (
	Stopped State = iota
	Playing
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Mode selects how a Clock turns ticks into frame indexes.
type Mode int

const (
	// ModeElapsed derives the index from wall-clock time since the start, so
	// late ticks never accumulate drift.
	ModeElapsed Mode = iota
	// ModeStepped advances exactly one frame per tick.
	ModeStepped
)

func (m Mode) String() string {
	if m == ModeStepped {
		return "stepped"
	}
	return "elapsed"
}

// ParseMode converts a config value to a Mode. Unknown values select
// ModeElapsed.
func ParseMode(s string) Mode {
	if s == "stepped" {
		return ModeStepped
	}
	return ModeElapsed
}

const (
	// DefaultSampleRate is how many times per second an elapsed clock is sampled.
	DefaultSampleRate = 30
	// DefaultFrameLength is the frame duration of an elapsed clock.
	DefaultFrameLength = 33 * time.Millisecond
	// DefaultStepLength is the frame duration of a stepped clock.
	DefaultStepLength = 100 * time.Millisecond
)

// Transition describes a state change of a Clock.
type Transition struct {
	From   State
	To     State
	Index  int
	Reason string
}

// Options configure a Clock.
type Options struct {
	FrameLength  time.Duration
	Loop         bool
	AutoStart    bool
	Mode         Mode
	SampleRate   int
	OnTransition func(Transition)
}

func (o Options) normalise() Options {
	if o.FrameLength <= 0 {
		if o.Mode == ModeStepped {
			o.FrameLength = DefaultStepLength
		} else {
			o.FrameLength = DefaultFrameLength
		}
	}
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}
	return o
}

// Clock maps sampled time onto an index into a frame sequence. It holds no
// goroutines and is not safe for concurrent use; every method that depends on
// time takes the current instant explicitly.
type Clock struct {
	opts  Options
	seq   *frame.Sequence
	state State
	index int

	started  bool
	start    time.Time
	pausedAt time.Time
}

// NewClock creates a Clock over seq. It starts Playing when AutoStart is set
// and seq has frames.
func NewClock(seq *frame.Sequence, opts Options, now time.Time) *Clock {
	c := new(Clock)
	c.opts = opts.normalise()
	c.seq = seq
	c.state = Stopped
	if c.opts.AutoStart && seq.Len() > 0 {
		c.begin(now)
		c.setState(Playing, "autostart")
	}
	return c
}

// Options returns the normalised options.
func (c *Clock) Options() Options {
	return c.opts
}

// State returns the transport state.
func (c *Clock) State() State {
	return c.state
}

// Playing reports whether the clock is advancing.
func (c *Clock) Playing() bool {
	return c.state == Playing
}

// Index returns the current frame index. It is meaningless when the sequence
// is empty.
func (c *Clock) Index() int {
	return c.index
}

// Sequence returns the frames being played.
func (c *Clock) Sequence() *frame.Sequence {
	return c.seq
}

// Current returns the frame at the current index.
func (c *Clock) Current() (frame.Content, bool) {
	return c.seq.At(c.index)
}

// TickInterval is how often Tick should be called.
func (c *Clock) TickInterval() time.Duration {
	if c.opts.Mode == ModeStepped {
		return c.opts.FrameLength
	}
	return time.Second / time.Duration(c.opts.SampleRate)
}

// Play starts or resumes playback. It reports false when the clock was
// already playing or has nothing to play.
func (c *Clock) Play(now time.Time) bool {
	if c.state == Playing || c.seq.Len() == 0 {
		return false
	}
	reason := "play"
	switch c.state {
	case Paused:
		if c.started {
			c.start = c.start.Add(now.Sub(c.pausedAt))
		}
		reason = "resume"
	case Finished:
		c.index = 0
		c.started = false
		reason = "restart"
	}
	if !c.started {
		c.begin(now)
	}
	c.setState(Playing, reason)
	return true
}

// Pause freezes playback on the current frame.
func (c *Clock) Pause(now time.Time) bool {
	if c.state != Playing {
		return false
	}
	c.pausedAt = now
	c.setState(Paused, "pause")
	return true
}

// Toggle flips between playing and paused.
func (c *Clock) Toggle(now time.Time) {
	if c.state == Playing {
		c.Pause(now)
		return
	}
	c.Play(now)
}

// Reset rewinds to the first frame and clears the start timestamp. Playing
// and paused clocks keep their state; a finished clock becomes stopped.
func (c *Clock) Reset() {
	c.index = 0
	c.started = false
	c.start = time.Time{}
	if c.state == Finished {
		c.setState(Stopped, "reset")
	}
}

// SetSequence swaps in new frames. Nothing happens when seq is the sequence
// already held; otherwise the clock rewinds, and auto-starts if configured.
func (c *Clock) SetSequence(seq *frame.Sequence, now time.Time) bool {
	if seq.ID() == c.seq.ID() {
		return false
	}
	c.seq = seq
	c.index = 0
	c.started = false
	c.start = time.Time{}

	switch {
	case seq.Len() == 0:
		if c.state != Stopped {
			c.setState(Stopped, "empty sequence")
		}
	case c.opts.AutoStart:
		c.begin(now)
		if c.state != Playing {
			c.setState(Playing, "autostart")
		}
	case c.state == Finished:
		c.setState(Stopped, "new sequence")
	}
	return true
}

// Tick samples the clock. It returns the current index and whether it moved
// since the previous sample.
func (c *Clock) Tick(now time.Time) (int, bool) {
	n := c.seq.Len()
	if c.state != Playing || n == 0 {
		return c.index, false
	}
	if !c.started {
		c.begin(now)
	}

	var idx int
	if c.opts.Mode == ModeStepped {
		idx = c.index + 1
	} else {
		elapsed := now.Sub(c.start)
		if elapsed < 0 {
			elapsed = 0
		}
		idx = int(elapsed / c.opts.FrameLength)
	}

	if idx >= n {
		if c.opts.Loop {
			cycles := idx / n
			if c.opts.Mode == ModeElapsed {
				c.start = c.start.Add(time.Duration(cycles*n) * c.opts.FrameLength)
			}
			idx %= n
			c.trace(Playing, Playing, idx, "loop")
		} else {
			prev := c.index
			c.index = n - 1
			c.setState(Finished, "end of sequence")
			return c.index, c.index != prev
		}
	}

	changed := idx != c.index
	c.index = idx
	return idx, changed
}

func (c *Clock) begin(now time.Time) {
	c.start = now.Add(-time.Duration(c.index) * c.opts.FrameLength)
	c.started = true
}

func (c *Clock) setState(to State, reason string) {
	from := c.state
	c.state = to
	c.trace(from, to, c.index, reason)
}

func (c *Clock) trace(from, to State, index int, reason string) {
	if c.opts.OnTransition != nil {
		c.opts.OnTransition(Transition{From: from, To: to, Index: index, Reason: reason})
	}
}
