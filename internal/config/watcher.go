package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// Watcher reports changes to a set of files. Directories are watched
// rather than the files themselves so editors that replace files on save
// are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	onChange func(path string)
	logger   *slog.Logger
	done     chan struct{}
	mu       sync.Mutex
	running  bool
	timer    *time.Timer
}

// NewWatcher creates a watcher for paths. onChange runs on the watcher's
// goroutine, once per burst of events.
func NewWatcher(paths []string, onChange func(path string), logger *slog.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	files := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		files[filepath.Clean(p)] = struct{}{}
	}

	return &Watcher{
		watcher:  watcher,
		files:    files,
		onChange: onChange,
		logger:   logger.With("component", "config-watcher"),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. Directories that do not exist are skipped.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dirs := make(map[string]struct{})
	for f := range w.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			w.logger.Debug("not watching missing directory", "dir", dir)
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}

	go w.watch()
	return nil
}

func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if _, ours := w.files[filepath.Clean(event.Name)]; !ours {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.schedule(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounce, func() {
		w.logger.Debug("configuration changed", "file", path)
		w.onChange(path)
	})
}

// Stop stops the watcher. Pending notifications are dropped.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	return w.watcher.Close()
}
