package workspace

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/logging"
)

// Watcher feeds saves of lesson files on disk into the store. Every write
// event becomes one Update, so every save reruns the preview.
type Watcher struct {
	store   *Store
	topic   topic.Topic
	files   map[string]FileKind // cleaned path -> kind
	watcher *fsnotify.Watcher
	logger  *logging.Logger
}

// NewWatcher watches the given files for t. Parent directories are watched
// rather than the files so that editors saving by rename are still seen.
func NewWatcher(s *Store, t topic.Topic, paths map[FileKind]string, logger *logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownTopic, t)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		store:   s,
		topic:   t,
		files:   make(map[string]FileKind, len(paths)),
		watcher: fw,
		logger:  logger.Named("watcher"),
	}
	dirs := make(map[string]bool)
	for kind, path := range paths {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = kind
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Load applies the current content of every watched file once
func (w *Watcher) Load() error {
	for path, kind := range w.files {
		if err := w.apply(path, kind); err != nil {
			return err
		}
	}
	return nil
}

// Run processes file events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			kind, tracked := w.files[filepath.Clean(event.Name)]
			if !tracked {
				continue
			}
			if err := w.apply(event.Name, kind); err != nil {
				w.logger.Warn("Failed to apply file change",
					zap.String("path", event.Name),
					zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", zap.Error(err))
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) apply(path string, kind FileKind) error {
	text, err := ReadLesson(path)
	if err != nil {
		return err
	}
	w.logger.Debug("File changed", zap.String("path", path), zap.String("file", string(kind)))
	return w.store.Update(w.topic, kind, text)
}
