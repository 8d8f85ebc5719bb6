// Package query implements the stateless queries over AL syntax trees:
// positional descent, kind collection, structural paths, level reduction
// and property lookup.
//
// Queries never fail for "no match"; they return nil or an empty result.
// Errors are reserved for structural inconsistencies such as a path that
// does not resolve.
package query

import (
	"go.lsp.dev/protocol"

	"github.com/yaklabco/altree/pkg/syntax"
)

// FindNode descends from root towards pos and returns the innermost node
// whose full span contains it.
//
// At every level the children are scanned in order and the first one whose
// full span contains pos is followed; siblings are never revisited. With a
// kind filter, the deepest accepted node along that single containment path
// is returned, or nil if none on the path is accepted. The root itself is
// never returned.
func FindNode(root *syntax.Node, pos protocol.Position, kinds ...syntax.Kind) *syntax.Node {
	if root == nil {
		return nil
	}

	for _, child := range root.Children {
		if !syntax.Contains(syntax.ToRange(child.FullSpan), pos) {
			continue
		}

		deeper := FindNode(child, pos, kinds...)
		if len(kinds) == 0 {
			if deeper != nil {
				return deeper
			}
			return child
		}

		if deeper != nil && deeper.Is(kinds...) {
			return deeper
		}
		if child.Is(kinds...) {
			return child
		}
		return nil
	}

	return nil
}
