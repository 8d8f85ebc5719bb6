package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/altree/pkg/runner"
	"github.com/yaklabco/altree/pkg/syntax"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 4 // FILE, SPAN, KIND, NAME
	minFileWidth     = 20
	minSpanWidth     = 11
	minKindWidth     = 12
	minNameWidth     = 12
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
)

// TableRow represents a single node in the table.
type TableRow struct {
	File string
	Span string
	Kind string
	Name string
}

// NodeToTableRow converts a node found in path to a table row.
func NodeToTableRow(path string, node *syntax.Node) TableRow {
	return TableRow{
		File: path,
		Span: node.Span.String(),
		Kind: node.KindName,
		Name: node.Text(),
	}
}

// TableFormatter formats nodes as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:    styles,
		termWidth: termWidth,
	}
}

// FormatTable formats the nodes of a runner result as a table grouped by
// file. Files without nodes are left out.
func (t *TableFormatter) FormatTable(result *runner.Result) string {
	if result == nil {
		return ""
	}

	var groups [][]TableRow
	for _, file := range result.Files {
		if len(file.Nodes) == 0 {
			continue
		}
		rows := make([]TableRow, 0, len(file.Nodes))
		for _, node := range file.Nodes {
			rows = append(rows, NodeToTableRow(file.Path, node))
		}
		groups = append(groups, rows)
	}
	if len(groups) == 0 {
		return ""
	}

	widths := t.calculateColumnWidths(groups)

	var builder strings.Builder
	builder.WriteString(t.formatHeader(widths) + "\n")
	builder.WriteString(t.formatSeparator(widths, heavySeparator) + "\n")

	for i, group := range groups {
		if i > 0 {
			builder.WriteString(t.formatSeparator(widths, lightSeparator) + "\n")
		}
		for _, row := range group {
			builder.WriteString(t.formatRow(row, widths) + "\n")
		}
	}

	builder.WriteString(t.formatSeparator(widths, heavySeparator) + "\n")
	return builder.String()
}

type columnWidths struct {
	file int
	span int
	kind int
	name int
}

func (t *TableFormatter) calculateColumnWidths(groups [][]TableRow) columnWidths {
	widths := columnWidths{
		file: minFileWidth,
		span: minSpanWidth,
		kind: minKindWidth,
		name: minNameWidth,
	}

	for _, group := range groups {
		for _, row := range group {
			widths.file = max(widths.file, len(row.File))
			widths.span = max(widths.span, len(row.Span))
			widths.kind = max(widths.kind, len(row.Kind))
			widths.name = max(widths.name, len(row.Name))
		}
	}

	// Shrink the name column first, then the file column.
	if total := calculateTotalWidth(widths); total > t.termWidth {
		widths.name = max(minNameWidth, widths.name-(total-t.termWidth))
	}
	if total := calculateTotalWidth(widths); total > t.termWidth {
		widths.file = max(minFileWidth, widths.file-(total-t.termWidth))
	}

	return widths
}

func calculateTotalWidth(widths columnWidths) int {
	return widths.file + widths.span + widths.kind + widths.name + tablePadding*tableColumnCount
}

func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s ",
		widths.file, "FILE",
		widths.span, "SPAN",
		widths.kind, "KIND",
		widths.name, "NAME",
	)
	return t.styles.TableHeader.Render(header)
}

func (t *TableFormatter) formatSeparator(widths columnWidths, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, calculateTotalWidth(widths)))
}

func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	return fmt.Sprintf(" %s  %s  %s  %s",
		t.styles.FilePath.Render(pad(truncateFilePath(row.File, widths.file), widths.file)),
		t.styles.Location.Render(pad(truncateString(row.Span, widths.span), widths.span)),
		t.styles.Kind.Render(pad(truncateString(row.Kind, widths.kind), widths.kind)),
		t.styles.Name.Render(truncateString(row.Name, widths.name)),
	)
}

// pad right-pads before styling so escape codes do not disturb alignment.
func pad(str string, width int) string {
	return fmt.Sprintf("%-*s", width, str)
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
