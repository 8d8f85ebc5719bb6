package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/altree/pkg/syntax"
)

// FormatNode formats a node as "path:line:col  Kind  name". Lines and
// columns are one-based.
func (s *Styles) FormatNode(path string, node *syntax.Node) string {
	if node == nil {
		return s.Dim.Render("no node")
	}

	location := s.Location.Render(node.Span.Start.String())
	if path != "" {
		location = s.FilePath.Render(path) + ":" + location
	}

	line := location + "  " + s.Kind.Render(node.KindName)
	if text := node.Text(); text != "" {
		line += "  " + s.Name.Render(text)
	}
	return line
}

// FormatSourceContext formats the source line with a caret marker under the
// one-based column.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var builder strings.Builder

	const indent = "    "

	builder.WriteString(indent + s.Code.Render(line) + "\n")
	if column > 0 {
		padding := indent + strings.Repeat(" ", column-1)
		builder.WriteString(padding + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, nodeCount int) string {
	header := s.FilePath.Render(path)
	if nodeCount > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d %s)", nodeCount, plural(nodeCount, "node", "nodes")))
	}
	return header
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
