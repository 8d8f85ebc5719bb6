package syntax

import (
	"encoding/json"

	"gitlab.com/tozd/go/errors"
)

// ErrNoRoot is returned when a tree-fetch response carries no root node.
var ErrNoRoot = errors.New("syntax tree response has no root")

// Response is the payload returned by the language service for a tree-fetch
// request.
type Response struct {
	Root *Node `json:"root"`
}

// wireNode mirrors the service's JSON node shape. The parent reference is
// not serialised; it is rebuilt while decoding.
type wireNode struct {
	Kind       string    `json:"kind,omitempty"`
	Span       TextSpan  `json:"span"`
	FullSpan   *TextSpan `json:"fullSpan,omitempty"`
	ChildNodes []*Node   `json:"childNodes,omitempty"`
	Identifier string    `json:"identifier,omitempty"`
	Name       string    `json:"name,omitempty"`
}

// UnmarshalJSON decodes a node and its subtree, linking parent pointers.
// A node without a fullSpan gets its span as full span.
func (n *Node) UnmarshalJSON(data []byte) error {
	var wire wireNode
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.WithStack(err)
	}

	n.Kind = ParseKind(wire.Kind)
	n.KindName = wire.Kind
	n.Span = wire.Span
	n.FullSpan = wire.Span
	if wire.FullSpan != nil {
		n.FullSpan = *wire.FullSpan
	}
	n.Identifier = wire.Identifier
	n.Name = wire.Name

	n.Children = make([]*Node, 0, len(wire.ChildNodes))
	for _, child := range wire.ChildNodes {
		if child == nil {
			continue
		}
		child.Parent = n
		n.Children = append(n.Children, child)
	}

	return nil
}

// MarshalJSON encodes a node in the service's wire shape.
func (n *Node) MarshalJSON() ([]byte, error) {
	fullSpan := n.FullSpan
	data, err := json.Marshal(wireNode{
		Kind:       n.KindName,
		Span:       n.Span,
		FullSpan:   &fullSpan,
		ChildNodes: n.Children,
		Identifier: n.Identifier,
		Name:       n.Name,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// Decode parses a tree-fetch response and returns its root.
func Decode(data []byte) (*Node, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Errorf("decode syntax tree: %w", err)
	}
	if resp.Root == nil {
		return nil, errors.WithStack(ErrNoRoot)
	}
	return resp.Root, nil
}
