package runner

import (
	"context"
	"runtime"
	"sync"

	"gitlab.com/tozd/go/errors"

	"github.com/yaklabco/altree/pkg/syntax"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

// VisitFunc inspects a loaded tree and returns the nodes of interest.
type VisitFunc func(ctx context.Context, tree *syntaxtree.Tree, root *syntax.Node) ([]*syntax.Node, error)

// Runner loads the trees of many files through a shared cache.
type Runner struct {
	// Cache fetches and keeps the syntax trees.
	Cache *syntaxtree.Cache
}

// New creates a new Runner over cache.
func New(cache *syntaxtree.Cache) *Runner {
	return &Runner{Cache: cache}
}

// Run discovers files under opts.Paths, loads their trees concurrently and
// calls visit for each tree that loaded. It returns a deterministic
// collection of FileOutcome values and aggregate stats.
func (r *Runner) Run(ctx context.Context, opts Options, visit VisitFunc) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(files) {
		jobs = len(files)
	}

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, visit)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Workers finish out of order.
	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, errors.Errorf("run cancelled: %w", err)
	}

	return result, nil
}

func (r *Runner) worker(
	ctx context.Context,
	workCh <-chan string,
	outCh chan<- FileOutcome,
	visit VisitFunc,
) {
	for path := range workCh {
		if ctx.Err() != nil {
			return
		}

		outcome := r.process(ctx, path, visit)

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

func (r *Runner) process(ctx context.Context, path string, visit VisitFunc) FileOutcome {
	outcome := FileOutcome{Path: path}

	tree, err := r.Cache.Get(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	outcome.Tree = tree

	root, err := tree.Root()
	if err != nil {
		outcome.Error = err
		return outcome
	}
	if visit == nil {
		return outcome
	}

	nodes, err := visit(ctx, tree, root)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	outcome.Nodes = nodes
	return outcome
}
