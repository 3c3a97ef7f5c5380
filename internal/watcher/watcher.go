// Package watcher provides file system watching with debouncing for the
// manifest file, so edits made by external tools show up in the editor.
package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/forma-dev/forma/internal/pubsub"
)

// ChangeEvent is the payload published when the manifest file changes.
type ChangeEvent struct {
	Path string
}

// Watcher monitors the manifest file for changes and publishes debounced
// change events through a broker.
type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	manifestPath string
	debounce     time.Duration
	broker       *pubsub.Broker[ChangeEvent]
	done         chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	ManifestPath string
	DebounceDur  time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(manifestPath string) Config {
	return Config{
		ManifestPath: manifestPath,
		DebounceDur:  500 * time.Millisecond,
	}
}

// New creates a new manifest watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher:    fsw,
		manifestPath: cfg.ManifestPath,
		debounce:     cfg.DebounceDur,
		broker:       pubsub.NewBroker[ChangeEvent](),
		done:         make(chan struct{}),
	}, nil
}

// Broker returns the broker change events are published on. Subscribe
// before calling Start to avoid missing the first event.
func (w *Watcher) Broker() *pubsub.Broker[ChangeEvent] {
	return w.broker
}

// Start begins watching the manifest's directory.
func (w *Watcher) Start() error {
	// Watch the directory rather than the file itself: atomic saves
	// replace the manifest via rename, which would orphan a file watch.
	dir := filepath.Dir(w.manifestPath)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	go w.loop()

	return nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	w.broker.Close()
	return w.fsWatcher.Close()
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !w.isRelevantEvent(event) {
				continue
			}

			// Reset or start debounce timer
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = true
			} else {
				if !timer.Stop() {
					// Drain the timer channel if it already fired
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				w.broker.Publish(pubsub.UpdatedEvent, ChangeEvent{Path: w.manifestPath})
				pending = false
			}

		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			// Keep watching on errors; callers can wrap the watcher
			// if they need error visibility.

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent checks if the event should trigger a refresh. Atomic
// saves surface as Create or Rename on the manifest name, in-place
// editors as Write.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}

	return filepath.Base(event.Name) == filepath.Base(w.manifestPath)
}
