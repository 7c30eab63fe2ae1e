// Package watch signals when a single file changes on disk.
//
// The parent directory is watched with fsnotify so editors that save by
// writing a new file and renaming it over the old one are still seen. When
// fsnotify is unavailable or fails, the watcher falls back to polling the
// file's modification time and size.
package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the stat interval in polling mode.
const DefaultPollInterval = time.Second

// Watcher reports changes to one file.
type Watcher struct {
	// path is the cleaned path of the watched file.
	path string
	// events is buffered to 1 so bursts of writes coalesce into one signal.
	events chan struct{}
	// done is closed by [Watcher.Close].
	done chan struct{}
	// fsw is the native watcher; nil when polling.
	fsw *fsnotify.Watcher
	// once makes Close idempotent.
	once sync.Once
	// polling is set once the watcher has fallen back to stat polling.
	polling atomic.Bool
	// pollInterval is the stat interval in polling mode.
	pollInterval time.Duration
}

// New starts watching path.
func New(path string) (*Watcher, error) {
	return newWatcher(path, DefaultPollInterval, false)
}

// newWatcher builds a Watcher; forcePoll skips fsnotify entirely.
func newWatcher(path string, interval time.Duration, forcePoll bool) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	w := &Watcher{
		path:         abs,
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: interval,
	}
	if forcePoll {
		w.startPolling()
		return w, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, falling back to polling", "error", err)
		w.startPolling()
		return w, nil
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		slog.Info("cannot watch directory, falling back to polling", "path", abs, "error", err)
		fsw.Close()
		w.startPolling()
		return w, nil
	}
	w.fsw = fsw
	go w.watch(fsw)
	return w, nil
}

// Events delivers a signal after the file changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Polling reports whether the watcher uses stat polling.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.fsw != nil {
			if cerr := w.fsw.Close(); cerr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", cerr)
			}
		}
	})
	return err
}

// watch forwards write and create events for the file. On an fsnotify
// error it switches to polling.
func (w *Watcher) watch(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.notify()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Info("fsnotify error, switching to polling", "error", err)
			w.startPolling()
			return
		}
	}
}

func (w *Watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

// stamp identifies one version of the file.
type stamp struct {
	mod  time.Time
	size int64
}

func (w *Watcher) stat() (stamp, bool) {
	info, err := os.Stat(w.path)
	if err != nil {
		return stamp{}, false
	}
	return stamp{mod: info.ModTime(), size: info.Size()}, true
}

// poll stats the file every interval and signals when it changes. A
// missing file is ignored until it reappears.
func (w *Watcher) poll() {
	last, _ := w.stat()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			cur, ok := w.stat()
			if !ok || cur == last {
				continue
			}
			last = cur
			w.notify()
		}
	}
}

// notify sends one signal unless one is already pending.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
