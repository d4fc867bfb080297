package frame

import (
	"context"
	"errors"
	"fmt"

	"pkt.systems/pslog"
)

// DefaultFailureThreshold is the number of consecutive missing frames taken
// as the end of a sequence.
const DefaultFailureThreshold = 3

// ErrNoFrames is returned when a load finishes without a single frame.
var ErrNoFrames = errors.New("no frames loaded")

// Loader pulls sequentially numbered frames from a Source until it sees
// Threshold failures in a row.
type Loader struct {
	Source    Source
	Threshold int
}

// NewLoader creates a Loader with the default failure threshold.
func NewLoader(src Source) *Loader {
	return &Loader{Source: src, Threshold: DefaultFailureThreshold}
}

// Load fetches frames into a fresh sequence. When nothing could be loaded the
// returned sequence is empty and the error wraps ErrNoFrames.
func (l *Loader) Load(ctx context.Context) (*Sequence, error) {
	seq := NewSequence()
	_, err := l.LoadInto(ctx, seq)
	return seq, err
}

// LoadInto appends frames to seq as they arrive and returns how many were
// added. Gaps shorter than the threshold are skipped over.
func (l *Loader) LoadInto(ctx context.Context, seq *Sequence) (int, error) {
	log := pslog.Ctx(ctx)
	threshold := l.Threshold
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}

	loaded := 0
	failures := 0
	var lastErr error
	for n := 1; failures < threshold; n++ {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}
		c, err := l.Source.Fetch(ctx, n)
		if err != nil {
			failures++
			lastErr = err
			if !errors.Is(err, ErrNotFound) {
				log.Debug("frame fetch failed", "frame", n, "err", err)
			}
			continue
		}
		seq.Append(c)
		loaded++
		failures = 0
	}

	if loaded == 0 {
		if lastErr != nil && !errors.Is(lastErr, ErrNotFound) {
			return 0, fmt.Errorf("%w: %v", ErrNoFrames, lastErr)
		}
		return 0, fmt.Errorf("%w: first %d frames missing", ErrNoFrames, threshold)
	}
	log.Debug("frames loaded", "count", loaded)
	return loaded, nil
}
