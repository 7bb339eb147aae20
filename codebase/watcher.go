package codebase

import (
	"context"
	"time"

	"github.com/dhamidi/classreader/loader"
)

const DefaultInterval = time.Second

// Watcher polls a Codebase for changed inputs and reloads them.
type Watcher struct {
	codebase *Codebase
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}

	// Listener receives the load events of every poll.
	Listener loader.LoadListener
	// OnChange is called after each poll that loaded or removed classes.
	OnChange func(Changes, error)
}

func NewWatcher(c *Codebase, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		codebase: c,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start polls in a new goroutine until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop ends polling and waits for a poll in progress to finish.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.poll(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	var listeners []loader.LoadListener
	if w.Listener != nil {
		listeners = append(listeners, w.Listener)
	}
	changes, err := w.codebase.Reload(ctx, listeners...)
	if err != nil {
		log.Warningf("reload: %s", err)
	}
	if changes.Empty() && err == nil {
		return
	}
	log.Infof("%d classes changed, %d removed", len(changes.Loaded), len(changes.Removed))
	if w.OnChange != nil {
		w.OnChange(changes, err)
	}
}
