// Package syntaxtree caches AL syntax trees per file and keeps them in step
// with the text they were built from.
//
// A Cache is constructed once and passed to every component that needs tree
// access. Each entry pairs a tree with the exact snapshot it was fetched
// for; a request whose current text differs from the snapshot fetches a new
// tree and replaces the entry wholesale.
package syntaxtree

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"
	"go.lsp.dev/protocol"

	"github.com/yaklabco/altree/pkg/query"
	"github.com/yaklabco/altree/pkg/syntax"
)

// ErrLoadFailure is returned by Tree.Root when the language service did not
// produce a usable tree for the snapshot.
var ErrLoadFailure = errors.New("syntax tree not loaded")

// Tree is one cache entry: a root node plus the source text it was built
// from. A Tree is immutable.
type Tree struct {
	// Path is the cleaned file path the tree belongs to.
	Path string

	// Content is the snapshot the tree was derived from.
	Content string

	// Generation identifies this fetch; every refetch gets a new one.
	Generation uuid.UUID

	// FetchedAt is when the fetch completed.
	FetchedAt time.Time

	root    *syntax.Node
	loadErr error

	linesOnce sync.Once
	lines     *syntax.LineIndex
}

// NewTree wraps an already decoded root. loadErr, if non-nil, is reported by
// Root instead of the tree.
func NewTree(path, content string, root *syntax.Node, loadErr error) *Tree {
	if root == nil && loadErr == nil {
		loadErr = syntax.ErrNoRoot
	}
	return &Tree{
		Path:       path,
		Content:    content,
		Generation: uuid.New(),
		FetchedAt:  time.Now(),
		root:       root,
		loadErr:    loadErr,
	}
}

// Root returns the root node, or an error wrapping ErrLoadFailure if the
// fetch for this snapshot failed.
func (t *Tree) Root() (*syntax.Node, error) {
	if t.loadErr != nil {
		return nil, errors.Errorf("%w: %s: %v", ErrLoadFailure, t.Path, t.loadErr)
	}
	return t.root, nil
}

// Loaded reports whether Root would succeed.
func (t *Tree) Loaded() bool {
	return t.loadErr == nil
}

// FindNode returns the innermost node at pos, restricted to kinds if any are
// given. See query.FindNode for the exact matching rules. It returns nil
// when the tree failed to load.
func (t *Tree) FindNode(pos protocol.Position, kinds ...syntax.Kind) *syntax.Node {
	return query.FindNode(t.root, pos, kinds...)
}

// CollectNodesOfKind returns every node of kind in the document, in
// document order.
func (t *Tree) CollectNodesOfKind(kind syntax.Kind) []*syntax.Node {
	var out []*syntax.Node
	query.CollectChildNodes(t.root, kind, true, &out)
	return out
}

// Lines returns the line index of the snapshot.
func (t *Tree) Lines() *syntax.LineIndex {
	t.linesOnce.Do(func() {
		t.lines = syntax.NewLineIndex(t.Content)
	})
	return t.lines
}

// TextOf returns the snapshot text covered by node's span.
func (t *Tree) TextOf(node *syntax.Node) string {
	if node == nil {
		return ""
	}
	return t.Lines().SpanText(node.Span)
}

// PropertyValue returns the value node of obj's property called name, with
// property names read from this tree's snapshot. See query.LookupProperty.
func (t *Tree) PropertyValue(obj *syntax.Node, name string) *syntax.Node {
	return query.PropertyValue(t.Lines(), obj, name)
}

// ReduceLevels widens node against this tree's snapshot.
// See query.ReduceLevels.
func (t *Tree) ReduceLevels(node *syntax.Node, dir query.Direction, maxSteps int) *syntax.Node {
	return query.ReduceLevels(t.Lines(), node, dir, maxSteps)
}
