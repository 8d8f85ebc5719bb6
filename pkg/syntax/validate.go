package syntax

import (
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidTree is wrapped by every structural violation reported by Validate.
var ErrInvalidTree = errors.New("invalid syntax tree")

// Validate checks the structural invariants of a decoded tree:
//   - every node's FullSpan contains its Span
//   - every child's FullSpan lies within its parent's FullSpan
//   - children are sorted by start and do not overlap
//   - parent pointers match the child lists
//
// Synthetic nodes with an empty full span are exempt from containment checks.
func Validate(root *Node) error {
	return Walk(root, validateNode)
}

func validateNode(node *Node) error {
	outer := ToRange(node.FullSpan)

	if !node.FullSpan.IsEmpty() && !ContainsRange(outer, ToRange(node.Span)) {
		return errors.Errorf("%w: %s: span outside full span", ErrInvalidTree, node)
	}

	var prev *Node
	for idx, child := range node.Children {
		if child.Parent != node {
			return errors.Errorf("%w: %s: child %d has wrong parent", ErrInvalidTree, node, idx)
		}

		childRange := ToRange(child.FullSpan)
		if !node.FullSpan.IsEmpty() && !ContainsRange(outer, childRange) {
			return errors.Errorf("%w: %s: child %d (%s) outside parent", ErrInvalidTree, node, idx, child)
		}

		if prev != nil && ComparePosition(childRange.Start, ToRange(prev.FullSpan).End) < 0 {
			return errors.Errorf("%w: %s: child %d (%s) overlaps or precedes %s",
				ErrInvalidTree, node, idx, child, prev)
		}
		prev = child
	}

	return nil
}
