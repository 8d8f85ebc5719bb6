package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/altree/pkg/runner"
)

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "12 nodes in 3 files (40 files checked, 1 failed)".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	var builder strings.Builder

	if stats.NodesTotal == 0 {
		builder.WriteString(s.Warning.Render("No matching nodes"))
	} else {
		builder.WriteString(s.Success.Render(fmt.Sprintf("%d %s", stats.NodesTotal, plural(stats.NodesTotal, "node", "nodes"))))
		builder.WriteString(fmt.Sprintf(" in %d %s", stats.FilesWithNodes, plural(stats.FilesWithNodes, "file", "files")))
	}

	details := []string{fmt.Sprintf("%d %s checked", stats.FilesDiscovered, plural(stats.FilesDiscovered, "file", "files"))}
	if stats.FilesErrored > 0 {
		details = append(details, s.Error.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}
	builder.WriteString(s.Dim.Render(" (") + strings.Join(details, s.Dim.Render(", ")) + s.Dim.Render(")"))

	return builder.String() + "\n"
}
