// Package syntax provides the AL syntax tree model consumed from the AL
// language service. It defines:
//   - Node: a tree node with kind, spans, children and a parent back-reference
//   - Kind: the closed catalog of node tags understood by the engine
//   - TextSpan: line/character spans and their mapping onto host ranges
//
// Trees are immutable once decoded. Parent pointers are navigation links
// only; ownership always flows from parent to children.
package syntax

import "strings"

// Node represents a single node in an AL syntax tree.
type Node struct {
	// Kind identifies what type of node this is.
	Kind Kind

	// KindName is the raw wire tag. It differs from Kind.String() only
	// for KindUnknown nodes.
	KindName string

	// Span covers the construct itself.
	Span TextSpan

	// FullSpan covers the construct plus surrounding trivia.
	// It always contains Span.
	FullSpan TextSpan

	// Parent is the structural parent, nil for the root. Non-owning.
	Parent *Node

	// Children are in source order.
	Children []*Node

	// Identifier is the identifier token text, when the kind has one.
	Identifier string

	// Name is the display name, e.g. of an object or property.
	Name string
}

// NewNode creates a detached node of the given kind.
func NewNode(kind Kind, span, fullSpan TextSpan) *Node {
	return &Node{
		Kind:     kind,
		KindName: kind.String(),
		Span:     span,
		FullSpan: fullSpan,
	}
}

// AppendChild appends child to parent and sets the back-reference.
func AppendChild(parent, child *Node) {
	if parent == nil || child == nil {
		return
	}
	child.Parent = parent
	parent.Children = append(parent.Children, child)
}

// HasChildren returns true if this node has any children.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Is returns true if the node's kind is one of kinds.
func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// Text returns the node's identifier text, falling back to its name.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	if n.Identifier != "" {
		return n.Identifier
	}
	return n.Name
}

// IndexInParent returns the position of n among its parent's children, or
// -1 if n has no parent or is not linked into it.
func (n *Node) IndexInParent() int {
	if n == nil || n.Parent == nil {
		return -1
	}
	for idx, sibling := range n.Parent.Children {
		if sibling == n {
			return idx
		}
	}
	return -1
}

// Ancestor returns the nearest ancestor whose kind is one of kinds.
func (n *Node) Ancestor(kinds ...Kind) *Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Is(kinds...) {
			return p
		}
	}
	return nil
}

// SameAs reports whether two nodes have the same kind and spans. It is used
// when node identity cannot be relied upon.
func (n *Node) SameAs(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.Kind == other.Kind && n.Span == other.Span && n.FullSpan == other.FullSpan
}

// String returns a short description such as `MethodDeclaration "Foo" 3:4-7:8`.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	var sb strings.Builder
	sb.WriteString(n.KindName)
	if n.KindName == "" {
		sb.WriteString("<root>")
	}
	if text := n.Text(); text != "" {
		sb.WriteString(` "`)
		sb.WriteString(text)
		sb.WriteString(`"`)
	}
	sb.WriteByte(' ')
	sb.WriteString(formatSpan(n.Span))
	return sb.String()
}
