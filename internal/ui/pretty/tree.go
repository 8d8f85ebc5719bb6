package pretty

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/altree/pkg/syntax"
)

// Tree drawing glyphs.
const (
	branchMid  = "├─ "
	branchLast = "└─ "
	branchPipe = "│  "
	branchNone = "   "
)

// maxSnippetLen caps the source text shown next to a leaf.
const maxSnippetLen = 40

// TreeOptions controls RenderTree.
type TreeOptions struct {
	// MaxDepth limits how many levels below the root are drawn. 0 draws all.
	MaxDepth int

	// Width truncates every line to this many cells. 0 disables truncation.
	Width int

	// Source, when set, adds the text of leaf nodes.
	Source *syntax.LineIndex
}

// RenderTree draws root and its descendants, one node per line.
func (s *Styles) RenderTree(root *syntax.Node, opts TreeOptions) string {
	if root == nil {
		return ""
	}

	var lines []string
	lines = append(lines, s.treeLabel(root, opts))
	s.renderChildren(root, "", 1, opts, &lines)

	if opts.Width > 0 {
		clip := lipgloss.NewStyle().MaxWidth(opts.Width)
		for i, line := range lines {
			lines[i] = clip.Render(line)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func (s *Styles) renderChildren(node *syntax.Node, prefix string, depth int, opts TreeOptions, lines *[]string) {
	if opts.MaxDepth > 0 && depth > opts.MaxDepth {
		if len(node.Children) > 0 {
			*lines = append(*lines, prefix+s.Branch.Render(branchLast)+
				s.Dim.Render("… "+strconv.Itoa(len(node.Children))+" more"))
		}
		return
	}

	for i, child := range node.Children {
		last := i == len(node.Children)-1
		branch, indent := branchMid, branchPipe
		if last {
			branch, indent = branchLast, branchNone
		}

		*lines = append(*lines, prefix+s.Branch.Render(branch)+s.treeLabel(child, opts))
		s.renderChildren(child, prefix+s.Branch.Render(indent), depth+1, opts, lines)
	}
}

func (s *Styles) treeLabel(node *syntax.Node, opts TreeOptions) string {
	label := s.Kind.Render(node.KindName)
	if node.Parent == nil && node.KindName == "" {
		label = s.Kind.Render("<root>")
	}
	if text := node.Text(); text != "" {
		label += " " + s.Name.Render(strconv.Quote(text))
	}
	label += " " + s.Location.Render(node.Span.String())

	if opts.Source != nil && len(node.Children) == 0 {
		if snippet := snippetOf(opts.Source.SpanText(node.Span)); snippet != "" {
			label += "  " + s.Code.Render(snippet)
		}
	}
	return label
}

// snippetOf returns the first line of text, shortened to maxSnippetLen runes.
func snippetOf(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		text = strings.TrimSpace(text[:idx]) + " …"
	}
	runes := []rune(text)
	if len(runes) > maxSnippetLen {
		text = string(runes[:maxSnippetLen-1]) + "…"
	}
	return text
}
