package query

import "github.com/yaklabco/altree/pkg/syntax"

// CollectChildNodes appends to out every child of node whose kind is kind,
// in document order. With recursive set, all descendants are considered.
// Callers may reuse out across calls to merge several searches.
func CollectChildNodes(node *syntax.Node, kind syntax.Kind, recursive bool, out *[]*syntax.Node) {
	if node == nil || out == nil {
		return
	}

	for _, child := range node.Children {
		if child.Kind == kind {
			*out = append(*out, child)
		}
		if recursive {
			CollectChildNodes(child, kind, true, out)
		}
	}
}

// CollectChildNodesOfKinds runs CollectChildNodes once per kind and
// concatenates the results. The result is grouped by kind in the order
// given, not merged by position.
func CollectChildNodesOfKinds(node *syntax.Node, kinds []syntax.Kind, recursive bool) []*syntax.Node {
	var out []*syntax.Node
	for _, kind := range kinds {
		CollectChildNodes(node, kind, recursive, &out)
	}
	return out
}

// FirstChildNodeOfKind returns the first match in collection order, or nil.
func FirstChildNodeOfKind(node *syntax.Node, kind syntax.Kind, recursive bool) *syntax.Node {
	if node == nil {
		return nil
	}

	for _, child := range node.Children {
		if child.Kind == kind {
			return child
		}
		if recursive {
			if found := FirstChildNodeOfKind(child, kind, true); found != nil {
				return found
			}
		}
	}

	return nil
}
