package stream

import (
	"fmt"
	"testing"
	"time"

	"github.com/matt-g-everett/termtx/frame"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func sequence(n int) *frame.Sequence {
	seq := frame.NewSequence()
	for i := 0; i < n; i++ {
		seq.Append(frame.Text(fmt.Sprintf("frame %d", i)))
	}
	return seq
}

func at(d time.Duration) time.Time {
	return epoch.Add(d)
}

func TestElapsedIndexMatchesFrameBoundaries(t *testing.T) {
	const n = 5
	for _, frameLen := range []time.Duration{10 * time.Millisecond, 33 * time.Millisecond, time.Second} {
		for _, eps := range []time.Duration{0, frameLen / 2, frameLen - 1} {
			for k := 0; k < n; k++ {
				c := NewClock(sequence(n), Options{FrameLength: frameLen, AutoStart: true}, epoch)
				got, _ := c.Tick(at(time.Duration(k)*frameLen + eps))
				if got != k {
					t.Fatalf("frameLen=%v k=%d eps=%v: index %d, want %d", frameLen, k, eps, got, k)
				}
				if c.State() != Playing {
					t.Fatalf("frameLen=%v k=%d: state %v, want playing", frameLen, k, c.State())
				}
			}
		}
	}
}

func TestLoopWrapMatchesStart(t *testing.T) {
	const n = 4
	frameLen := 25 * time.Millisecond
	for _, delta := range []time.Duration{0, time.Millisecond, frameLen - 1} {
		a := NewClock(sequence(n), Options{FrameLength: frameLen, Loop: true, AutoStart: true}, epoch)
		b := NewClock(sequence(n), Options{FrameLength: frameLen, Loop: true, AutoStart: true}, epoch)
		wrapped, _ := a.Tick(at(n*frameLen + delta))
		direct, _ := b.Tick(at(delta))
		if wrapped != direct {
			t.Fatalf("delta=%v: wrapped index %d, direct index %d", delta, wrapped, direct)
		}
		if a.State() != Playing {
			t.Fatalf("looping clock state %v", a.State())
		}
	}
}

func TestLoopContinuesSeamlessly(t *testing.T) {
	frameLen := 10 * time.Millisecond
	c := NewClock(sequence(3), Options{FrameLength: frameLen, Loop: true, AutoStart: true}, epoch)
	want := []int{0, 1, 2, 0, 1, 2, 0}
	for i, w := range want {
		got, _ := c.Tick(at(time.Duration(i)*frameLen + frameLen/2))
		if got != w {
			t.Fatalf("tick %d: index %d, want %d", i, got, w)
		}
	}
	// Skipping whole cycles lands on the same phase.
	if got, _ := c.Tick(at(100*frameLen + frameLen/2)); got != 100%3 {
		t.Fatalf("after skipping cycles: index %d, want %d", got, 100%3)
	}
}

func TestNoLoopFinishesOnLastFrame(t *testing.T) {
	const n = 3
	frameLen := 20 * time.Millisecond
	var transitions []Transition
	for _, after := range []time.Duration{0, 1, frameLen, 10 * time.Second} {
		transitions = nil
		c := NewClock(sequence(n), Options{
			FrameLength:  frameLen,
			AutoStart:    true,
			OnTransition: func(tr Transition) { transitions = append(transitions, tr) },
		}, epoch)
		got, _ := c.Tick(at(n*frameLen + after))
		if got != n-1 || c.Index() != n-1 {
			t.Fatalf("after=%v: index %d, want %d", after, got, n-1)
		}
		if c.State() != Finished {
			t.Fatalf("after=%v: state %v, want finished", after, c.State())
		}
		// A finished clock no longer advances.
		if got, changed := c.Tick(at(100 * frameLen)); got != n-1 || changed {
			t.Fatalf("finished clock moved to %d", got)
		}
	}
	last := transitions[len(transitions)-1]
	if last.From != Playing || last.To != Finished {
		t.Fatalf("last transition = %+v", last)
	}
}

func TestTickReportsOnlyIndexChanges(t *testing.T) {
	frameLen := 100 * time.Millisecond
	c := NewClock(sequence(3), Options{FrameLength: frameLen, AutoStart: true}, epoch)
	if _, changed := c.Tick(at(10 * time.Millisecond)); changed {
		t.Fatal("index 0 sampled again should not report a change")
	}
	if _, changed := c.Tick(at(110 * time.Millisecond)); !changed {
		t.Fatal("moving to index 1 should report a change")
	}
	if _, changed := c.Tick(at(150 * time.Millisecond)); changed {
		t.Fatal("index 1 sampled again should not report a change")
	}
}

func TestInitialState(t *testing.T) {
	if c := NewClock(sequence(2), Options{AutoStart: true}, epoch); c.State() != Playing {
		t.Fatalf("auto-start clock state %v", c.State())
	}
	if c := NewClock(sequence(2), Options{}, epoch); c.State() != Stopped {
		t.Fatalf("manual clock state %v", c.State())
	}
	if c := NewClock(sequence(0), Options{AutoStart: true}, epoch); c.State() != Stopped {
		t.Fatalf("empty auto-start clock state %v", c.State())
	}
}

func TestPlayIsIdempotent(t *testing.T) {
	frameLen := 10 * time.Millisecond
	once := NewClock(sequence(5), Options{FrameLength: frameLen}, epoch)
	twice := NewClock(sequence(5), Options{FrameLength: frameLen}, epoch)

	if !once.Play(at(0)) {
		t.Fatal("first Play should start the clock")
	}
	twice.Play(at(0))
	if twice.Play(at(15 * time.Millisecond)) {
		t.Fatal("second Play should be a no-op")
	}

	a, _ := once.Tick(at(35 * time.Millisecond))
	b, _ := twice.Tick(at(35 * time.Millisecond))
	if a != b || once.State() != twice.State() {
		t.Fatalf("play once: %d/%v, play twice: %d/%v", a, once.State(), b, twice.State())
	}
}

func TestPlayEmptySequenceIsNoop(t *testing.T) {
	c := NewClock(sequence(0), Options{}, epoch)
	if c.Play(epoch) || c.State() != Stopped {
		t.Fatalf("empty clock started: %v", c.State())
	}
	if _, ok := c.Current(); ok {
		t.Fatal("empty clock has a current frame")
	}
	if _, changed := c.Tick(at(time.Second)); changed {
		t.Fatal("empty clock ticked")
	}
}

func TestToggleTwiceRestoresState(t *testing.T) {
	for _, start := range []bool{true, false} {
		c := NewClock(sequence(3), Options{AutoStart: true}, epoch)
		if !start {
			c.Pause(epoch)
		}
		before := c.Playing()
		c.Toggle(at(time.Millisecond))
		if c.Playing() == before {
			t.Fatalf("toggle did not flip from playing=%v", before)
		}
		c.Toggle(at(2 * time.Millisecond))
		if c.Playing() != before {
			t.Fatalf("double toggle changed playing from %v to %v", before, c.Playing())
		}
	}
}

func TestPauseHoldsIndexAndResumeContinues(t *testing.T) {
	frameLen := 10 * time.Millisecond
	c := NewClock(sequence(10), Options{FrameLength: frameLen, AutoStart: true}, epoch)
	c.Tick(at(25 * time.Millisecond))
	if c.Index() != 2 {
		t.Fatalf("index %d, want 2", c.Index())
	}
	if !c.Pause(at(25 * time.Millisecond)) {
		t.Fatal("Pause should succeed while playing")
	}
	if c.Pause(at(26 * time.Millisecond)) {
		t.Fatal("second Pause should be a no-op")
	}
	if _, changed := c.Tick(at(time.Second)); changed || c.Index() != 2 {
		t.Fatalf("paused clock moved to %d", c.Index())
	}

	// Paused for 975ms; resuming picks up at the same phase.
	c.Play(at(time.Second))
	if got, _ := c.Tick(at(time.Second + 6*time.Millisecond)); got != 3 {
		t.Fatalf("after resume: index %d, want 3", got)
	}
}

func TestResetKeepsTransportState(t *testing.T) {
	frameLen := 10 * time.Millisecond
	c := NewClock(sequence(5), Options{FrameLength: frameLen, AutoStart: true}, epoch)
	c.Tick(at(35 * time.Millisecond))
	c.Reset()
	if c.Index() != 0 || c.State() != Playing {
		t.Fatalf("after reset: index %d state %v", c.Index(), c.State())
	}
	// The start is re-anchored on the next sample.
	if got, _ := c.Tick(at(40 * time.Millisecond)); got != 0 {
		t.Fatalf("first tick after reset: index %d, want 0", got)
	}
	if got, _ := c.Tick(at(55 * time.Millisecond)); got != 1 {
		t.Fatalf("second tick after reset: index %d, want 1", got)
	}

	c.Pause(at(55 * time.Millisecond))
	c.Reset()
	if c.State() != Paused || c.Index() != 0 {
		t.Fatalf("paused reset: index %d state %v", c.Index(), c.State())
	}
}

func TestPlayAfterFinishRestarts(t *testing.T) {
	frameLen := 10 * time.Millisecond
	c := NewClock(sequence(2), Options{FrameLength: frameLen, AutoStart: true}, epoch)
	c.Tick(at(time.Second))
	if c.State() != Finished {
		t.Fatalf("state %v, want finished", c.State())
	}
	c.Play(at(2 * time.Second))
	if c.State() != Playing || c.Index() != 0 {
		t.Fatalf("restart: index %d state %v", c.Index(), c.State())
	}
	if got, _ := c.Tick(at(2*time.Second + 15*time.Millisecond)); got != 1 {
		t.Fatalf("after restart: index %d, want 1", got)
	}
}

func TestSetSequenceResets(t *testing.T) {
	frameLen := 10 * time.Millisecond
	seq := sequence(5)
	c := NewClock(seq, Options{FrameLength: frameLen, AutoStart: true}, epoch)
	c.Tick(at(30 * time.Millisecond))

	if c.SetSequence(seq, at(31*time.Millisecond)) {
		t.Fatal("same sequence should not reset")
	}
	if c.Index() != 3 {
		t.Fatalf("index changed to %d", c.Index())
	}

	next := sequence(2)
	if !c.SetSequence(next, at(40*time.Millisecond)) {
		t.Fatal("new sequence should reset")
	}
	if c.Index() != 0 || c.State() != Playing {
		t.Fatalf("after swap: index %d state %v", c.Index(), c.State())
	}
	if got, _ := c.Tick(at(55 * time.Millisecond)); got != 1 {
		t.Fatalf("after swap: index %d, want 1", got)
	}

	c.SetSequence(sequence(0), at(60*time.Millisecond))
	if c.State() != Stopped {
		t.Fatalf("empty swap: state %v", c.State())
	}
}

func TestSequenceGrowthIsVisible(t *testing.T) {
	frameLen := 10 * time.Millisecond
	seq := sequence(2)
	c := NewClock(seq, Options{FrameLength: frameLen, AutoStart: true}, epoch)
	seq.Append(frame.Text("late"))
	if got, _ := c.Tick(at(25 * time.Millisecond)); got != 2 {
		t.Fatalf("index %d, want 2", got)
	}
	f, _ := c.Current()
	if f.String() != "late" {
		t.Fatalf("current frame %q", f.String())
	}
}

func TestSteppedMode(t *testing.T) {
	opts := Options{Mode: ModeStepped, AutoStart: true, Loop: true}
	c := NewClock(sequence(3), opts, epoch)
	if c.TickInterval() != DefaultStepLength {
		t.Fatalf("tick interval %v", c.TickInterval())
	}
	want := []int{1, 2, 0, 1}
	for i, w := range want {
		// Stepped clocks ignore how much time passed.
		got, changed := c.Tick(at(time.Duration(i) * time.Hour))
		if got != w || !changed {
			t.Fatalf("tick %d: index %d changed=%v, want %d", i, got, changed, w)
		}
	}

	opts.Loop = false
	c = NewClock(sequence(2), opts, epoch)
	c.Tick(epoch)
	if got, changed := c.Tick(epoch); got != 1 || changed || c.State() != Finished {
		t.Fatalf("non-looping stepped clock: index %d changed=%v state %v", got, changed, c.State())
	}
}

func TestOptionDefaults(t *testing.T) {
	c := NewClock(sequence(1), Options{FrameLength: -1}, epoch)
	if c.Options().FrameLength != DefaultFrameLength {
		t.Fatalf("frame length %v", c.Options().FrameLength)
	}
	if c.TickInterval() != time.Second/DefaultSampleRate {
		t.Fatalf("tick interval %v", c.TickInterval())
	}
	if ParseMode("stepped") != ModeStepped || ParseMode("bogus") != ModeElapsed {
		t.Fatal("ParseMode")
	}
}
