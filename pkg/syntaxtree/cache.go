package syntaxtree

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"gitlab.com/tozd/go/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/yaklabco/altree/pkg/syntax"
)

// DefaultFetchTimeout bounds a single tree fetch when no timeout is configured.
const DefaultFetchTimeout = 30 * time.Second

// FetchRequest is sent to the language service to obtain a tree.
type FetchRequest struct {
	// Source is the full file text.
	Source string `json:"source"`
	// Path is the absolute file path.
	Path string `json:"path"`
	// ProjectPath is the workspace root.
	ProjectPath string `json:"projectPath"`
}

// Fetcher obtains a syntax tree for a snapshot from the language service.
type Fetcher interface {
	FetchTree(ctx context.Context, req FetchRequest) (*syntax.Node, error)
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for fetch and eviction events.
func WithLogger(logger *log.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFetchTimeout bounds each fetch. Non-positive values keep the default.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(c *Cache) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithProjectPath sets the workspace root sent with every fetch.
func WithProjectPath(path string) Option {
	return func(c *Cache) {
		c.projectPath = path
	}
}

// Cache maps file paths to their most recently fetched Tree.
//
// At most one fetch per path and text is in flight: concurrent requests for
// the same stale snapshot wait for and share that fetch. A request with
// different text starts its own fetch. An entry is replaced only after its
// successor is fully loaded, so readers see the old or the new tree, never a
// partial one.
//
// Cache is safe for concurrent use.
type Cache struct {
	fetcher     Fetcher
	source      Source
	projectPath string
	timeout     time.Duration
	logger      *log.Logger

	mu    sync.RWMutex
	trees map[string]*Tree
	// epochs counts evictions per path, so a fetch that started before an
	// eviction does not repopulate the slot.
	epochs map[string]uint64
	// started numbers fetches per path; stored holds the number of the fetch
	// that produced the cached entry, so a slow older fetch never replaces
	// a newer tree.
	started map[string]uint64
	stored  map[string]uint64

	inflight singleflight.Group
}

// New creates a cache that reads current text from source and fetches trees
// through fetcher.
func New(fetcher Fetcher, source Source, opts ...Option) *Cache {
	cache := &Cache{
		fetcher: fetcher,
		source:  source,
		timeout: DefaultFetchTimeout,
		logger:  log.New(io.Discard),
		trees:   make(map[string]*Tree),
		epochs:  make(map[string]uint64),
		started: make(map[string]uint64),
		stored:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// Get returns the tree for path, reading its current text from the source.
// The cached tree is returned when its snapshot equals the current text;
// otherwise a new tree is fetched and stored.
//
// A failed fetch is not an error here: the returned Tree reports
// ErrLoadFailure from Root. Errors are returned only when the text cannot be
// read or ctx ends.
func (c *Cache) Get(ctx context.Context, path string) (*Tree, error) {
	content, err := c.source.Text(ctx, path)
	if err != nil {
		return nil, err
	}
	return c.GetDocument(ctx, path, content)
}

// GetDocument is Get for a caller that already holds the live text, such as
// an open editor buffer.
func (c *Cache) GetDocument(ctx context.Context, path, content string) (*Tree, error) {
	key := CleanPath(path)

	if tree := c.lookup(key); tree != nil && tree.Content == content {
		cacheHitsTotal.Inc()
		c.logger.Debug("syntax tree cache hit", "path", key, "generation", tree.Generation)
		return tree, nil
	}
	cacheMissesTotal.Inc()

	c.mu.RLock()
	epoch := c.epochs[key]
	c.mu.RUnlock()

	// The fetch outlives any single waiter; its own timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	result := c.inflight.DoChan(flightKey(key, epoch, content), func() (any, error) {
		return c.load(fetchCtx, key, content, epoch), nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.WithStack(ctx.Err())
	case res := <-result:
		return res.Val.(*Tree), nil //nolint:forcetypeassert // load always returns *Tree.
	}
}

// Evict drops the entry for path unconditionally, forcing the next request
// to fetch. Use it after an edit whose effect on the text may not be
// visible yet.
func (c *Cache) Evict(path string) {
	key := CleanPath(path)

	c.mu.Lock()
	_, existed := c.trees[key]
	delete(c.trees, key)
	c.epochs[key]++
	c.mu.Unlock()

	cacheEvictionsTotal.Inc()
	c.logger.Debug("syntax tree evicted", "path", key, "existed", existed)
}

// Peek returns the cached tree for path without checking staleness.
func (c *Cache) Peek(path string) (*Tree, bool) {
	tree := c.lookup(CleanPath(path))
	return tree, tree != nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.trees)
}

func (c *Cache) lookup(key string) *Tree {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trees[key]
}

// flightKey identifies a fetch by path, eviction epoch and text, so requests
// only join a fetch for the exact snapshot they asked for.
func flightKey(key string, epoch uint64, content string) string {
	sum := sha256.Sum256([]byte(content))
	return key + "\x00" + strconv.FormatUint(epoch, 10) + "\x00" + hex.EncodeToString(sum[:])
}

// load fetches a tree for content and stores it unless path was evicted
// since epoch or a later fetch already stored its tree.
func (c *Cache) load(ctx context.Context, key, content string, epoch uint64) *Tree {
	c.mu.Lock()
	c.started[key]++
	seq := c.started[key]
	c.mu.Unlock()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "syntaxtree.Cache.fetch",
		trace.WithAttributes(
			attribute.String("path", key),
			attribute.Int("source_bytes", len(content)),
		),
	)
	defer span.End()

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	root, err := c.fetcher.FetchTree(fetchCtx, FetchRequest{
		Source:      content,
		Path:        key,
		ProjectPath: c.projectPath,
	})
	if err == nil && root == nil {
		err = syntax.ErrNoRoot
	}
	elapsed := time.Since(started)
	recordFetch(elapsed, err)

	tree := NewTree(key, content, root, err)
	span.SetAttributes(attribute.String("generation", tree.Generation.String()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("syntax tree fetch failed", "path", key, "error", err, "elapsed", elapsed)
	} else {
		c.logger.Debug("syntax tree fetched", "path", key, "generation", tree.Generation, "elapsed", elapsed)
	}

	c.mu.Lock()
	if c.epochs[key] == epoch && seq > c.stored[key] {
		c.trees[key] = tree
		c.stored[key] = seq
	}
	c.mu.Unlock()

	return tree
}
