package knowledge

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// Watcher
// =============================================================================

// Watcher keeps the index in sync with a document directory: writes and
// creates re-index the file, removals delete it. Watch errors are logged, not
// fatal; the index simply goes stale until the next explicit ingest.
type Watcher struct {
	ingestor *Ingestor
	watcher  *fsnotify.Watcher
	root     string
	log      *slog.Logger

	started  bool
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher creates a watcher over the ingestor's index.
func NewWatcher(ingestor *Ingestor, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Watcher{
		ingestor: ingestor,
		watcher:  fsw,
		log:      log.With("component", "knowledge.watcher"),
		done:     make(chan struct{}),
	}, nil
}

// Watch starts watching the directory and processing events until Close.
func (w *Watcher) Watch(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.root = dir
	w.started = true

	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !w.ingestor.Matches(event.Name) {
		return
	}

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if err := w.ingestor.IngestFile(w.root, event.Name); err != nil {
			w.log.Warn("reindex failed", "path", event.Name, "error", err)
			return
		}
		w.log.Debug("reindexed document", "path", event.Name)

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		id := DocumentID(w.root, event.Name)
		if err := w.ingestor.index.Remove(id); err != nil {
			w.log.Warn("remove from index failed", "path", event.Name, "error", err)
			return
		}
		w.log.Debug("removed document", "path", event.Name)
	}
}

// Close stops event processing and releases the underlying watcher.
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
