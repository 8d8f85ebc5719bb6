package cli

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"gitlab.com/tozd/go/errors"
	"go.lsp.dev/protocol"
	"golang.org/x/term"

	"github.com/yaklabco/altree/pkg/config"
	"github.com/yaklabco/altree/pkg/host"
	"github.com/yaklabco/altree/pkg/query"
	"github.com/yaklabco/altree/pkg/syntax"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

// nodeRecord is the JSON form of a node. Ranges are zero-based, as on the
// wire.
type nodeRecord struct {
	File  string         `json:"file"`
	Kind  string         `json:"kind"`
	Name  string         `json:"name,omitempty"`
	Range protocol.Range `json:"range"`
	Path  []int          `json:"path,omitempty"`
}

// locationRecord is the JSON form of a location returned by the host.
type locationRecord struct {
	File  string         `json:"file"`
	Range protocol.Range `json:"range"`
}

func newNodeRecord(tree *syntaxtree.Tree, node *syntax.Node) nodeRecord {
	record := nodeRecord{
		File:  tree.Path,
		Kind:  node.KindName,
		Name:  node.Text(),
		Range: syntax.ToRange(node.Span),
	}
	if root, err := tree.Root(); err == nil {
		if path, err := query.PathToNode(root, node); err == nil {
			record.Path = path
		}
	}
	return record
}

func newLocationRecord(location protocol.Location) locationRecord {
	file, err := host.Filename(location.URI)
	if err != nil {
		file = string(location.URI)
	}
	return locationRecord{File: file, Range: location.Range}
}

func isJSON(cfg *config.Config) bool {
	return cfg.Format == config.FormatJSON
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return errors.Errorf("encode output: %w", err)
	}
	return nil
}

// lineText returns the text of a zero-based line without its line break.
func lineText(lines *syntax.LineIndex, line int) string {
	return lines.Text(
		syntax.LinePosition{Line: line},
		syntax.LinePosition{Line: line, Character: math.MaxInt32},
	)
}

// terminalWidth returns the width of w when it is a terminal, otherwise 0.
func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil {
		return 0
	}
	return width
}
