package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when New is given a non-positive interval.
const DefaultDebounce = 500 * time.Millisecond

// Func is run after each quiet period following a change to the watched
// file.
type Func func(ctx context.Context) error

// Watcher runs a Func whenever a single file changes.
type Watcher struct {
	path     string
	debounce time.Duration
	fn       Func
	logger   *slog.Logger

	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu   sync.Mutex
	runs int
}

// New creates a Watcher for path. fn must not be nil.
func New(path string, debounce time.Duration, fn Func) (*Watcher, error) {
	if fn == nil {
		return nil, errors.New("watch callback cannot be nil")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		fn:       fn,
		logger:   slog.Default(),
		stopCh:   make(chan struct{}),
	}, nil
}

// SetLogger replaces the logger used for change and failure messages.
func (w *Watcher) SetLogger(l *slog.Logger) {
	if l != nil {
		w.logger = l
	}
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Runs returns how many times the callback has completed.
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Start begins watching. It returns once the watch is registered; events
// are handled in the background until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.Info("watching for changes", "path", w.path, "debounce", w.debounce)
	return nil
}

// Stop halts the watcher and waits for a running callback to return.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.fsw != nil {
			err = w.fsw.Close()
		}
	})
	w.wg.Wait()
	return err
}

// Wait blocks until the watcher stops, either through Stop or because the
// context given to Start was canceled.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("file changed", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			w.run(ctx)
		}
	}
}

// relevant reports whether event touches the watched file with a change
// that leaves content behind. Removals are ignored; a replacement shows up
// as a following create or rename onto the path.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *Watcher) run(ctx context.Context) {
	start := time.Now()
	err := w.fn(ctx)

	w.mu.Lock()
	w.runs++
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("re-mining failed", "path", w.path, "error", err)
		return
	}
	w.logger.Info("re-mined", "path", w.path, "duration", time.Since(start).Round(time.Millisecond))
}
