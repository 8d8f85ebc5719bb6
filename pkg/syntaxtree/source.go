package syntaxtree

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Source yields the current text of a file.
type Source interface {
	Text(ctx context.Context, path string) (string, error)
}

// Documents is a Source that prefers open editor buffers and falls back to
// reading the file fresh from disk on every call.
type Documents struct {
	fs   afero.Fs
	open sync.Map // map[string]string
}

// NewDocuments creates a document source reading unopened files from fs.
// A nil fs means the OS file system.
func NewDocuments(fs afero.Fs) *Documents {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Documents{fs: fs}
}

// Open records the live buffer text for path.
func (d *Documents) Open(path, content string) {
	d.open.Store(CleanPath(path), content)
}

// Close forgets the buffer for path; later reads go to disk.
func (d *Documents) Close(path string) {
	d.open.Delete(CleanPath(path))
}

// IsOpen reports whether path has a live buffer.
func (d *Documents) IsOpen(path string) bool {
	_, ok := d.open.Load(CleanPath(path))
	return ok
}

// Text returns the buffer text for path, or the file content on disk.
func (d *Documents) Text(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.WithStack(err)
	}

	key := CleanPath(path)
	if content, ok := d.open.Load(key); ok {
		return content.(string), nil //nolint:forcetypeassert // Only strings are stored.
	}

	data, err := afero.ReadFile(d.fs, key)
	if err != nil {
		return "", errors.Errorf("read %s: %w", key, err)
	}
	return string(data), nil
}

// CleanPath normalises a path used as a cache key.
func CleanPath(path string) string {
	return filepath.Clean(path)
}
