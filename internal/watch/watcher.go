// Package watch keeps a live detection verdict for the observed page.
// It re-runs the scanner on a fixed poll cadence and additionally whenever
// the page snapshot file changes on disk, publishing verdict transitions on
// the event bus.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mindguard/mindguard/internal/detect"
	"github.com/mindguard/mindguard/internal/event"
	"github.com/mindguard/mindguard/internal/logging"
	"github.com/mindguard/mindguard/internal/page"
)

// DefaultPollInterval is the re-scan cadence used when none is configured.
const DefaultPollInterval = 3 * time.Second

// Watcher owns the scan loop for one observed page. Create with New,
// start with Start, and always Stop before discarding: Stop tears down the
// poll timer and the file subscription together, and no verdict is published
// after it returns.
type Watcher struct {
	scanner *detect.Scanner
	bus     *event.Bus
	logger  *logging.Logger

	url          string
	pagePath     string // empty means URL-only detection
	pollInterval time.Duration

	mu      sync.Mutex
	last    detect.Verdict
	started bool

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	doneCh chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithPollInterval overrides the default 3-second poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a watcher for the given URL and optional page snapshot file.
func New(bus *event.Bus, url, pagePath string, opts ...Option) *Watcher {
	w := &Watcher{
		scanner:      detect.NewScanner(),
		bus:          bus,
		logger:       logging.NopLogger(),
		url:          url,
		pagePath:     pagePath,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs an immediate scan, then begins the poll loop and the file
// subscription. Calling Start on a started watcher is an error.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}
	w.started = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	if w.pagePath != "" {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			w.abortStart()
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		// Watch the containing directory: editors replace files via rename,
		// which drops a watch placed on the file itself.
		if err := fsw.Add(filepath.Dir(w.pagePath)); err != nil {
			fsw.Close()
			w.abortStart()
			return fmt.Errorf("failed to watch page snapshot: %w", err)
		}
		w.fsw = fsw
	}

	w.rescan()

	go w.loop()
	return nil
}

// abortStart rolls back a failed Start so a later Stop is a clean no-op.
func (w *Watcher) abortStart() {
	w.mu.Lock()
	w.started = false
	w.stopCh = nil
	w.doneCh = nil
	w.mu.Unlock()
}

// loop is the single goroutine that reacts to poll ticks and file events.
// All publishing happens here, so teardown only needs to stop this loop.
func (w *Watcher) loop() {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	var fsEvents chan fsnotify.Event
	var fsErrors chan error
	if w.fsw != nil {
		fsEvents = w.fsw.Events
		fsErrors = w.fsw.Errors
	}

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.rescan()
		case ev, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if w.isPageEvent(ev) {
				w.rescan()
			}
		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// isPageEvent reports whether a file event concerns the page snapshot.
// Writes, creates, renames, and removals all count as document mutations.
func (w *Watcher) isPageEvent(ev fsnotify.Event) bool {
	return filepath.Clean(ev.Name) == filepath.Clean(w.pagePath)
}

// rescan rebuilds the snapshot, scans it, and publishes the verdict if it
// changed. Re-evaluating an unchanged page is a no-op.
func (w *Watcher) rescan() {
	snap := w.snapshot()
	verdict := w.scanner.Scan(snap)

	w.mu.Lock()
	changed := verdict != w.last
	w.last = verdict
	w.mu.Unlock()

	if !changed {
		return
	}

	w.logger.Info("detection verdict changed",
		"detected", verdict.Detected,
		"platform", verdict.Platform)
	w.bus.Publish(event.NewDetectionChangedEvent(verdict.Detected, verdict.Platform))
}

// snapshot parses the current page state. An unreadable or unparseable
// snapshot file degrades to URL-only detection; heuristics are advisory, so
// the error is logged and swallowed.
func (w *Watcher) snapshot() page.Snapshot {
	if w.pagePath == "" {
		return page.Snapshot{Hostname: page.Hostname(w.url)}
	}

	doc, err := page.ParseFile(w.pagePath)
	if err != nil {
		w.logger.Debug("page snapshot unreadable, scanning URL only", "error", err)
		return page.Snapshot{Hostname: page.Hostname(w.url)}
	}
	return page.NewSnapshot(w.url, doc)
}

// Verdict returns the most recent verdict.
func (w *Watcher) Verdict() detect.Verdict {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Stop cancels the poll timer and detaches the file subscription together.
// It blocks until the loop goroutine has exited; after Stop returns, no
// further verdict is published. Stopping an unstarted or already-stopped
// watcher is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	stopCh := w.stopCh
	doneCh := w.doneCh
	w.mu.Unlock()

	close(stopCh)
	<-doneCh

	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
}
