package host

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.lsp.dev/protocol"
)

// HoverCode returns the first fenced code block of a hover, which for AL
// holds the declaration text of the symbol (for example
// "Customer: Record Customer"). Without a code block the trimmed hover text
// is returned.
func HoverCode(hover protocol.Hover) string {
	source := []byte(hover.Contents.Value)
	if hover.Contents.Kind == protocol.PlainText {
		return strings.TrimSpace(hover.Contents.Value)
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var code string
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		lines := block.Lines()
		for idx := range lines.Len() {
			segment := lines.At(idx)
			buf.Write(segment.Value(source))
		}
		code = strings.TrimSpace(buf.String())
		return ast.WalkStop, nil
	})

	if code != "" {
		return code
	}
	return strings.TrimSpace(hover.Contents.Value)
}

// HoverCodes applies HoverCode to each hover and drops empty results.
func HoverCodes(hovers []protocol.Hover) []string {
	codes := make([]string, 0, len(hovers))
	for _, hover := range hovers {
		if code := HoverCode(hover); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
