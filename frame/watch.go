package frame

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"pkt.systems/pslog"
)

// watchDebounce collapses bursts of writes from a build step into one reload.
const watchDebounce = 150 * time.Millisecond

// Watch reloads the frames in dir whenever its contents change and hands each
// freshly loaded sequence to fn. Failed reloads are logged and skipped. Watch
// blocks until ctx is done.
func Watch(ctx context.Context, dir string, fn func(*Sequence)) error {
	log := pslog.Ctx(ctx).With("dir", dir)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}

	loader := NewLoader(NewDirSource(os.DirFS(dir)))
	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				timer.Reset(watchDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("frame watch error", "err", err)
		case <-timer.C:
			seq, err := loader.Load(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				log.Warn("frame reload failed", "err", err)
				continue
			}
			log.Info("frames reloaded", "count", seq.Len())
			fn(seq)
		}
	}
}
