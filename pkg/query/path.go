package query

import (
	"gitlab.com/tozd/go/errors"

	"github.com/yaklabco/altree/pkg/syntax"
)

var (
	// ErrNotDescendant is returned by PathToNode when the node is not in the
	// ancestor's subtree.
	ErrNotDescendant = errors.New("node is not a descendant of ancestor")

	// ErrIndexOutOfRange is returned by NodeByPath when a path index does not
	// address an existing child.
	ErrIndexOutOfRange = errors.New("path index out of range")
)

// PathToNode returns the child indices leading from ancestor down to node.
// Each step is resolved by identity, falling back to kind and span equality
// when the node is not linked by pointer. The path of ancestor to itself
// is empty.
//
// A path is only meaningful against the tree it was computed on.
func PathToNode(ancestor, node *syntax.Node) ([]int, error) {
	if ancestor == nil || node == nil {
		return nil, errors.WithStack(ErrNotDescendant)
	}

	var reversed []int
	current := node
	for current != ancestor {
		parent := current.Parent
		if parent == nil {
			return nil, errors.Errorf("%w: reached root from %s", ErrNotDescendant, node)
		}

		idx := childIndex(parent, current)
		if idx < 0 {
			return nil, errors.Errorf("%w: %s is not linked into %s", ErrNotDescendant, current, parent)
		}

		reversed = append(reversed, idx)
		current = parent
	}

	path := make([]int, len(reversed))
	for i, idx := range reversed {
		path[len(reversed)-1-i] = idx
	}
	return path, nil
}

func childIndex(parent, child *syntax.Node) int {
	if idx := child.IndexInParent(); idx >= 0 {
		return idx
	}
	for idx, sibling := range parent.Children {
		if sibling.SameAs(child) {
			return idx
		}
	}
	return -1
}

// NodeByPath follows path from root and returns the addressed node.
func NodeByPath(root *syntax.Node, path []int) (*syntax.Node, error) {
	if root == nil {
		return nil, errors.Errorf("%w: nil root", ErrIndexOutOfRange)
	}

	current := root
	for depth, idx := range path {
		if idx < 0 || idx >= len(current.Children) {
			return nil, errors.Errorf("%w: index %d at depth %d, %s has %d children",
				ErrIndexOutOfRange, idx, depth, current, len(current.Children))
		}
		current = current.Children[idx]
	}

	return current, nil
}
