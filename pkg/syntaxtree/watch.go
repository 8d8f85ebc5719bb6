package syntaxtree

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"gitlab.com/tozd/go/errors"
)

// ChangeFunc is called with the cleaned path of every changed source file,
// after its cache entry has been evicted.
type ChangeFunc func(path string, op fsnotify.Op)

// Watcher evicts cache entries when their files change on disk.
//
// Eviction is not needed for correctness, since Get compares snapshots, but
// it releases trees for deleted files and lets callers react to edits.
type Watcher struct {
	cache      *Cache
	watcher    *fsnotify.Watcher
	extensions []string
	logger     *log.Logger
}

// NewWatcher creates a watcher that evicts entries from cache. Only files
// whose extension is in extensions (compared case-insensitively) are
// reported; an empty list reports everything.
func NewWatcher(cache *Cache, extensions []string, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("create file watcher: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Watcher{
		cache:      cache,
		watcher:    fsw,
		extensions: extensions,
		logger:     logger,
	}, nil
}

// Add starts watching a file or directory. Directories are not watched
// recursively.
func (w *Watcher) Add(path string) error {
	if err := w.watcher.Add(path); err != nil {
		return errors.Errorf("watch %s: %w", path, err)
	}
	w.logger.Debug("watching", "path", path)
	return nil
}

// Run processes events until ctx ends or the watcher is closed. onChange
// may be nil.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event, onChange)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// Close stops the watcher and ends Run.
func (w *Watcher) Close() error {
	return errors.WithStack(w.watcher.Close())
}

func (w *Watcher) handle(event fsnotify.Event, onChange ChangeFunc) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.matches(event.Name) {
		return
	}

	path := CleanPath(event.Name)
	w.cache.Evict(path)
	w.logger.Debug("source changed", "path", path, "op", event.Op.String())

	if onChange != nil {
		onChange(path, event.Op)
	}
}

func (w *Watcher) matches(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, want := range w.extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
