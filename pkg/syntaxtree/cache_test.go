package syntaxtree_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
	"go.lsp.dev/protocol"

	"github.com/yaklabco/altree/pkg/query"
	"github.com/yaklabco/altree/pkg/syntax"
	"github.com/yaklabco/altree/pkg/syntax/syntaxtest"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

const (
	codeunitPath = "/ws/src/MyCU.Codeunit.al"
	codeunitText = "codeunit 50100 MyCU { procedure Foo() begin IF X THEN Y; end; }"
)

var errServiceDown = errors.New("service down")

// fakeFetcher builds a codeunit tree for any text and counts fetches.
type fakeFetcher struct {
	calls atomic.Int32
	// gate, when set, blocks every fetch until it is closed.
	gate chan struct{}
	fail error

	mu       sync.Mutex
	requests []syntaxtree.FetchRequest
}

func (f *fakeFetcher) FetchTree(ctx context.Context, req syntaxtree.FetchRequest) (*syntax.Node, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fail != nil {
		return nil, f.fail
	}
	return syntaxtest.NewCodeunitFixture().Root(), nil
}

func newCache(t *testing.T, fetcher syntaxtree.Fetcher) (*syntaxtree.Cache, *syntaxtree.Documents) {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, codeunitPath, []byte(codeunitText), 0o644))

	docs := syntaxtree.NewDocuments(fs)
	cache := syntaxtree.New(fetcher, docs,
		syntaxtree.WithProjectPath("/ws"),
		syntaxtree.WithFetchTimeout(5*time.Second),
	)
	return cache, docs
}

func TestCache_HitReturnsSameTree(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	cache, _ := newCache(t, fetcher)
	ctx := context.Background()

	first, err := cache.Get(ctx, codeunitPath)
	require.NoError(t, err)
	second, err := cache.Get(ctx, codeunitPath)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, 1, cache.Len())

	require.Len(t, fetcher.requests, 1)
	assert.Equal(t, syntaxtree.FetchRequest{
		Source:      codeunitText,
		Path:        codeunitPath,
		ProjectPath: "/ws",
	}, fetcher.requests[0])
}

func TestCache_TextChangeRefetches(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	cache, docs := newCache(t, fetcher)
	ctx := context.Background()

	first, err := cache.Get(ctx, codeunitPath)
	require.NoError(t, err)

	docs.Open(codeunitPath, codeunitText+" ")
	second, err := cache.Get(ctx, codeunitPath)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.NotEqual(t, first.Generation, second.Generation)
	assert.Equal(t, codeunitText+" ", second.Content)
	assert.Equal(t, int32(2), fetcher.calls.Load())

	// The old tree is untouched.
	assert.Equal(t, codeunitText, first.Content)
	_, err = first.Root()
	require.NoError(t, err)

	// Closing the buffer returns to the disk text, which is stale again.
	docs.Close(codeunitPath)
	assert.False(t, docs.IsOpen(codeunitPath))
	third, err := cache.Get(ctx, codeunitPath)
	require.NoError(t, err)
	assert.NotSame(t, second, third)
	assert.Equal(t, int32(3), fetcher.calls.Load())
}

func TestCache_EvictForcesRefetch(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	cache, _ := newCache(t, fetcher)
	ctx := context.Background()

	first, err := cache.Get(ctx, codeunitPath)
	require.NoError(t, err)

	cache.Evict(codeunitPath)
	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Peek(codeunitPath)
	assert.False(t, ok)

	second, err := cache.Get(ctx, codeunitPath)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestCache_EvictUnknownPath(t *testing.T) {
	t.Parallel()

	cache, _ := newCache(t, &fakeFetcher{})
	cache.Evict("/nowhere.al")
	assert.Equal(t, 0, cache.Len())
}

func TestCache_PathsAreCleaned(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	cache, _ := newCache(t, fetcher)
	ctx := context.Background()

	first, err := cache.Get(ctx, codeunitPath)
	require.NoError(t, err)
	second, err := cache.Get(ctx, "/ws/src/../src/MyCU.Codeunit.al")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestCache_ConcurrentRequestsShareFetch(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{gate: make(chan struct{})}
	cache, _ := newCache(t, fetcher)
	ctx := context.Background()

	const workers = 8
	trees := make([]*syntaxtree.Tree, workers)
	var wg sync.WaitGroup
	for idx := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := cache.Get(ctx, codeunitPath)
			assert.NoError(t, err)
			trees[idx] = tree
		}()
	}

	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(fetcher.gate)
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
	for _, tree := range trees[1:] {
		assert.Same(t, trees[0], tree)
	}
}

func TestCache_NewerTextDoesNotJoinOlderFetch(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{gate: make(chan struct{})}
	cache, _ := newCache(t, fetcher)
	ctx := context.Background()

	older := make(chan *syntaxtree.Tree, 1)
	go func() {
		tree, err := cache.GetDocument(ctx, codeunitPath, "v1")
		assert.NoError(t, err)
		older <- tree
	}()
	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, time.Millisecond)

	newer := make(chan *syntaxtree.Tree, 1)
	go func() {
		tree, err := cache.GetDocument(ctx, codeunitPath, "v2")
		assert.NoError(t, err)
		newer <- tree
	}()
	require.Eventually(t, func() bool { return fetcher.calls.Load() == 2 }, time.Second, time.Millisecond)

	close(fetcher.gate)

	assert.Equal(t, "v1", (<-older).Content)
	latest := <-newer
	assert.Equal(t, "v2", latest.Content)

	cached, ok := cache.Peek(codeunitPath)
	require.True(t, ok)
	assert.Same(t, latest, cached)
}

func TestCache_LoadFailure(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{fail: errServiceDown}
	cache, _ := newCache(t, fetcher)
	ctx := context.Background()

	tree, err := cache.Get(ctx, codeunitPath)
	require.NoError(t, err)
	assert.False(t, tree.Loaded())

	root, err := tree.Root()
	assert.Nil(t, root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, syntaxtree.ErrLoadFailure))
	assert.Contains(t, err.Error(), "service down")

	assert.Nil(t, tree.FindNode(protocol.Position{}))
	assert.Empty(t, tree.CollectNodesOfKind(syntax.KindBlock))

	// The failure is cached for this snapshot.
	again, err := cache.Get(ctx, codeunitPath)
	require.NoError(t, err)
	assert.Same(t, tree, again)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestCache_MissingRootIsLoadFailure(t *testing.T) {
	t.Parallel()

	cache, _ := newCache(t, fetcherFunc(func(context.Context, syntaxtree.FetchRequest) (*syntax.Node, error) {
		return nil, nil
	}))

	tree, err := cache.Get(context.Background(), codeunitPath)
	require.NoError(t, err)

	_, err = tree.Root()
	require.Error(t, err)
	assert.True(t, errors.Is(err, syntaxtree.ErrLoadFailure))
}

func TestCache_MissingFile(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	cache, _ := newCache(t, fetcher)

	_, err := cache.Get(context.Background(), "/ws/src/Missing.al")
	require.Error(t, err)
	assert.Equal(t, int32(0), fetcher.calls.Load())
}

func TestCache_CallerCancelDoesNotAbortFetch(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{gate: make(chan struct{})}
	cache, _ := newCache(t, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := cache.GetDocument(ctx, codeunitPath, codeunitText)
		done <- err
	}()

	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	err := <-done
	assert.True(t, errors.Is(err, context.Canceled))

	close(fetcher.gate)
	require.Eventually(t, func() bool { return cache.Len() == 1 }, time.Second, time.Millisecond)

	tree, err := cache.GetDocument(context.Background(), codeunitPath, codeunitText)
	require.NoError(t, err)
	assert.True(t, tree.Loaded())
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestCache_EvictDuringFetchDiscardsResult(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{gate: make(chan struct{})}
	cache, _ := newCache(t, fetcher)

	done := make(chan *syntaxtree.Tree, 1)
	go func() {
		tree, err := cache.GetDocument(context.Background(), codeunitPath, codeunitText)
		assert.NoError(t, err)
		done <- tree
	}()

	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, time.Millisecond)
	cache.Evict(codeunitPath)
	close(fetcher.gate)

	tree := <-done
	assert.True(t, tree.Loaded())
	assert.Equal(t, 0, cache.Len())
}

func TestCache_FetchTimeout(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{gate: make(chan struct{})}
	defer close(fetcher.gate)

	cache := syntaxtree.New(fetcher, syntaxtree.NewDocuments(afero.NewMemMapFs()),
		syntaxtree.WithFetchTimeout(10*time.Millisecond))

	tree, err := cache.GetDocument(context.Background(), codeunitPath, codeunitText)
	require.NoError(t, err)

	_, err = tree.Root()
	require.Error(t, err)
	assert.True(t, errors.Is(err, syntaxtree.ErrLoadFailure))
}

// Not parallel: reads process-wide counters.
func TestCache_Metrics(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache, _ := newCache(t, fetcher)
	ctx := context.Background()

	hits := testutil.ToFloat64(syntaxtree.CacheHitsTotal())
	misses := testutil.ToFloat64(syntaxtree.CacheMissesTotal())
	evictions := testutil.ToFloat64(syntaxtree.CacheEvictionsTotal())

	_, err := cache.Get(ctx, codeunitPath)
	require.NoError(t, err)
	_, err = cache.Get(ctx, codeunitPath)
	require.NoError(t, err)
	cache.Evict(codeunitPath)

	assert.InDelta(t, hits+1, testutil.ToFloat64(syntaxtree.CacheHitsTotal()), 0)
	assert.InDelta(t, misses+1, testutil.ToFloat64(syntaxtree.CacheMissesTotal()), 0)
	assert.InDelta(t, evictions+1, testutil.ToFloat64(syntaxtree.CacheEvictionsTotal()), 0)
}

// TestTree_Queries runs the find-then-widen flow a code action performs on a
// cached tree.
func TestTree_Queries(t *testing.T) {
	t.Parallel()

	fixture := syntaxtest.NewCodeunitFixture()
	tree := syntaxtree.NewTree(codeunitPath, fixture.Source, fixture.Root(), nil)

	root, err := tree.Root()
	require.NoError(t, err)
	assert.Same(t, fixture.Root(), root)

	pos := syntax.ToPosition(fixture.Position("Y", 0, 0))
	node := tree.FindNode(pos)
	assert.Same(t, fixture.Y, node)

	statement := tree.FindNode(pos, syntax.KindExpressionStatement)
	assert.Same(t, fixture.Statement, statement)

	assert.Equal(t, "IF X THEN Y;", tree.TextOf(fixture.If))
	assert.Empty(t, tree.TextOf(nil))

	blocks := tree.CollectNodesOfKind(syntax.KindBlock)
	require.Len(t, blocks, 1)
	assert.Same(t, fixture.Block, blocks[0])

	assert.Same(t, fixture.If, tree.ReduceLevels(fixture.Y, query.Right, 0))
	assert.Equal(t, 1, tree.Lines().LineCount())
}

type fetcherFunc func(context.Context, syntaxtree.FetchRequest) (*syntax.Node, error)

func (f fetcherFunc) FetchTree(ctx context.Context, req syntaxtree.FetchRequest) (*syntax.Node, error) {
	return f(ctx, req)
}
