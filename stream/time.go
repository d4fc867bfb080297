package stream

import "time"

// TimeProvider supplies the instants a Player samples its clock with.
type TimeProvider interface {
	Now() time.Time
}

// SystemTime reads the monotonic system clock.
type SystemTime struct{}

// Now implements TimeProvider.
func (SystemTime) Now() time.Time {
	return time.Now()
}

// A Ticker delivers tick instants on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }
