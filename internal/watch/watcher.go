// Package watch reports changes to the set of files in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is given.
const DefaultDebounce = 250 * time.Millisecond

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// Watcher monitors one directory and calls OnChange once a burst of
// create, remove or rename events has settled.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func()
	logger   LoggerFunc

	fsWatcher *fsnotify.Watcher

	mutex   sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a watcher for dir. A debounce of 0 uses 250ms.
func New(dir string, debounce time.Duration, onChange func(), logger LoggerFunc) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("watch callback required")
	}
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	return &Watcher{
		dir:       dir,
		debounce:  debounce,
		onChange:  onChange,
		logger:    logger,
		fsWatcher: fsWatcher,
	}, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

func (w *Watcher) logMessage(format string, args ...interface{}) {
	if w.logger != nil {
		w.logger(fmt.Sprintf(format, args...))
	}
}

// Start begins processing events until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return errors.New("watcher already running")
	}
	if w.done != nil {
		return errors.New("watcher closed")
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.running = true

	go w.loop(ctx)
	w.logMessage("watching %s", w.dir)
	return nil
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	// fire is nil while no change is pending.
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if relevant(event.Op) {
				fire = time.After(w.debounce)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logMessage("Error watching %s: %v", w.dir, err)

		case <-fire:
			fire = nil
			w.onChange()
		}
	}
}

// Close stops the event loop and releases the fsnotify watcher.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	cancel, done, running := w.cancel, w.done, w.running
	w.running = false
	w.mutex.Unlock()

	if running {
		cancel()
		<-done
	}
	if err := w.fsWatcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}
