package frame

import (
	"sync"
	"sync/atomic"
)

var lastSequenceID atomic.Uint64

// Sequence is an ordered, append-only list of frames. A loader may append
// while players read; every sequence carries a process-unique identity so
// consumers can tell a swapped-in animation from a growing one.
type Sequence struct {
	id     uint64
	mu     sync.RWMutex
	frames []Content
}

// NewSequence creates a Sequence holding the given frames in playback order.
func NewSequence(frames ...Content) *Sequence {
	s := new(Sequence)
	s.id = lastSequenceID.Add(1)
	s.frames = make([]Content, 0, len(frames))
	s.frames = append(s.frames, frames...)
	return s
}

// ID returns the identity of the sequence. A nil sequence has ID 0.
func (s *Sequence) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Append adds frames to the end of the sequence.
func (s *Sequence) Append(frames ...Content) {
	s.mu.Lock()
	s.frames = append(s.frames, frames...)
	s.mu.Unlock()
}

// Len returns the current number of frames. A nil sequence is empty.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.frames)
}

// At returns the frame at index i and whether it exists.
func (s *Sequence) At(i int) (Content, bool) {
	if s == nil {
		return Content{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.frames) {
		return Content{}, false
	}
	return s.frames[i], true
}

// Frames returns a snapshot of all frames.
func (s *Sequence) Frames() []Content {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Content, len(s.frames))
	copy(out, s.frames)
	return out
}
