package frame

import (
	"context"
	"sync"
)

// State is the phase of a load job.
type State int

const (
	Loading State = iota
	Failed
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "error"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Status is a snapshot of a load job. Err and Message are set when the job
// failed.
type Status struct {
	State    State
	Message  string
	Err      error
	Sequence *Sequence
}

// Job runs a Loader at most once and reports its outcome. Once discarded a
// job never changes its status or calls its callback again.
type Job struct {
	loader *Loader
	onDone func(Status)
	once   sync.Once
	done   chan struct{}

	// emitMu orders the final status write and callback against Discard.
	emitMu    sync.Mutex
	discarded bool

	mu     sync.Mutex
	status Status
}

// NewJob creates a Job. onDone, if set, is called once from the loading
// goroutine when the job completes and has not been discarded.
func NewJob(loader *Loader, onDone func(Status)) *Job {
	return &Job{
		loader: loader,
		onDone: onDone,
		done:   make(chan struct{}),
		status: Status{State: Loading},
	}
}

// Start begins loading in the background. Calls after the first are no-ops.
func (j *Job) Start(ctx context.Context) {
	j.once.Do(func() {
		go j.run(ctx)
	})
}

// Run loads synchronously. It shares Start's once guard.
func (j *Job) Run(ctx context.Context) Status {
	j.once.Do(func() {
		j.run(ctx)
	})
	<-j.done
	return j.Status()
}

func (j *Job) run(ctx context.Context) {
	defer close(j.done)
	seq, err := j.loader.Load(ctx)

	st := Status{State: Ready, Sequence: seq}
	if err != nil {
		st = Status{State: Failed, Message: err.Error(), Err: err, Sequence: seq}
	}

	j.emitMu.Lock()
	defer j.emitMu.Unlock()
	if j.discarded {
		return
	}
	j.mu.Lock()
	j.status = st
	j.mu.Unlock()
	if j.onDone != nil {
		j.onDone(st)
	}
}

// Status returns the current status.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Done is closed when the underlying load has returned, discarded or not.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Discard detaches the job from its owner. The load keeps running to
// completion but its result is dropped. If the callback is running Discard
// waits for it to return; it must not be called from inside the callback.
func (j *Job) Discard() {
	j.emitMu.Lock()
	j.discarded = true
	j.emitMu.Unlock()
}
