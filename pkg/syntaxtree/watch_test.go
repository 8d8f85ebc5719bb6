package syntaxtree_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/altree/pkg/syntaxtree"
)

type change struct {
	path string
	op   fsnotify.Op
}

func TestWatcher_EvictsChangedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "MyCU.Codeunit.al")
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(source, []byte(codeunitText), 0o644))

	cache := syntaxtree.New(&fakeFetcher{}, syntaxtree.NewDocuments(afero.NewOsFs()))
	_, err := cache.Get(context.Background(), source)
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	watcher, err := syntaxtree.NewWatcher(cache, []string{".al"}, nil)
	require.NoError(t, err)
	require.NoError(t, watcher.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan change, 16)
	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx, func(path string, op fsnotify.Op) {
			changes <- change{path: path, op: op}
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = watcher.Close()
	})

	// Files with other extensions are ignored.
	require.NoError(t, os.WriteFile(notes, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(source, []byte(codeunitText+"\n"), 0o644))

	select {
	case got := <-changes:
		assert.Equal(t, syntaxtree.CleanPath(source), got.path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	_, cached := cache.Peek(source)
	assert.False(t, cached)
}

func TestWatcher_RunStopsOnClose(t *testing.T) {
	t.Parallel()

	cache := syntaxtree.New(&fakeFetcher{}, syntaxtree.NewDocuments(afero.NewMemMapFs()))
	watcher, err := syntaxtree.NewWatcher(cache, nil, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- watcher.Run(context.Background(), nil) }()

	require.NoError(t, watcher.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}
