package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrNoConfigPath indicates Watch was called on a manager without a file path.
var ErrNoConfigPath = errors.New("no config path to watch")

// Watcher reloads a Manager whenever its config file changes on disk.
type Watcher struct {
	manager  *Manager
	watcher  *fsnotify.Watcher
	log      *slog.Logger
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

// NewWatcher creates a watcher bound to a manager.
func NewWatcher(manager *Manager, log *slog.Logger) (*Watcher, error) {
	if manager.path == "" {
		return nil, ErrNoConfigPath
	}
	if log == nil {
		log = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}

	return &Watcher{
		manager: manager,
		watcher: fw,
		log:     log.With("component", "config-watcher"),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching the config file's directory. Watching the directory
// rather than the file survives editors that replace the file on save.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.manager.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.started = true
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)

	target := filepath.Clean(w.manager.path)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := w.manager.Reload(); err != nil {
				w.log.Warn("config reload failed", "path", target, "error", err)
				continue
			}
			w.log.Info("config reloaded", "path", target)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", "error", err)
		}
	}
}

// Close stops watching and waits for the loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.watcher.Close()
		if w.started {
			<-w.done
		}
	})
	return err
}
