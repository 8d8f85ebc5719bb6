package query

import (
	"strings"

	"github.com/yaklabco/altree/pkg/syntax"
)

// Direction selects the side of a node examined by ReduceLevels.
type Direction int

const (
	// Left examines the text between the parent's start and the node's start.
	Left Direction = iota
	// Right examines the text between the node's end and the parent's end.
	Right
)

// String returns "left" or "right".
func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// statementTerminator is the only non-blank text allowed between a node and
// its parent for the node to be widened.
const statementTerminator = ";"

// ReduceLevels widens node to its ancestors for as long as the text between
// the node's span and the parent's span on the given side is blank or a
// single statement terminator. It stops at the first ancestor where that no
// longer holds, after maxSteps widenings (0 means unlimited), or below the
// root.
//
// text must index the snapshot the tree was built from.
func ReduceLevels(text *syntax.LineIndex, node *syntax.Node, dir Direction, maxSteps int) *syntax.Node {
	if text == nil || node == nil {
		return node
	}

	current := node
	for steps := 0; maxSteps <= 0 || steps < maxSteps; steps++ {
		parent := current.Parent
		if parent == nil || parent.Parent == nil {
			break
		}

		var between string
		if dir == Left {
			between = text.Text(parent.Span.Start, current.Span.Start)
		} else {
			between = text.Text(current.Span.End, parent.Span.End)
		}

		trimmed := strings.TrimSpace(between)
		if trimmed != "" && trimmed != statementTerminator {
			break
		}

		current = parent
	}

	return current
}
