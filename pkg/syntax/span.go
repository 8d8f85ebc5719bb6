package syntax

import (
	"fmt"

	"go.lsp.dev/protocol"
)

// LinePosition is a zero-based line and character pair as emitted by the
// language service.
type LinePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// TextSpan is a range of source text. Start is inclusive, End exclusive,
// following the host's range semantics.
type TextSpan struct {
	Start LinePosition `json:"start"`
	End   LinePosition `json:"end"`
}

// String renders the span with one-based lines and columns, e.g. "3:5-3:9".
func (s TextSpan) String() string {
	return formatSpan(s)
}

// String renders the position with a one-based line and column.
func (p LinePosition) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// IsEmpty returns true if the span covers no text.
func (s TextSpan) IsEmpty() bool {
	return s.Start == s.End
}

// ToPosition converts a line position to the host position type.
// Negative values are clamped to zero.
func ToPosition(p LinePosition) protocol.Position {
	return protocol.Position{
		Line:      clampUint32(p.Line),
		Character: clampUint32(p.Character),
	}
}

// FromPosition converts a host position to a line position.
func FromPosition(p protocol.Position) LinePosition {
	return LinePosition{Line: int(p.Line), Character: int(p.Character)}
}

// ToRange maps a span onto the host range type. The producer is trusted;
// no validation happens here.
func ToRange(s TextSpan) protocol.Range {
	return protocol.Range{
		Start: ToPosition(s.Start),
		End:   ToPosition(s.End),
	}
}

// FromRange maps a host range back onto a span.
func FromRange(r protocol.Range) TextSpan {
	return TextSpan{Start: FromPosition(r.Start), End: FromPosition(r.End)}
}

// ComparePosition orders two positions by line, then by character.
// It returns -1 when a is before b, 1 when a is after b and 0 when equal.
func ComparePosition(a, b protocol.Position) int {
	switch {
	case a.Line < b.Line:
		return -1
	case a.Line > b.Line:
		return 1
	case a.Character < b.Character:
		return -1
	case a.Character > b.Character:
		return 1
	default:
		return 0
	}
}

// Contains reports whether point lies within outer. Both ends are inclusive,
// so a cursor placed right after the last character still matches.
func Contains(outer protocol.Range, point protocol.Position) bool {
	return ComparePosition(point, outer.Start) >= 0 && ComparePosition(point, outer.End) <= 0
}

// ContainsRange reports whether inner lies completely within outer.
func ContainsRange(outer, inner protocol.Range) bool {
	return Contains(outer, inner.Start) && Contains(outer, inner.End)
}

func clampUint32(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v) //nolint:gosec // Line and column values never exceed uint32.
}

// formatSpan renders a span with one-based lines and columns.
func formatSpan(s TextSpan) string {
	return fmt.Sprintf("%d:%d-%d:%d",
		s.Start.Line+1, s.Start.Character+1, s.End.Line+1, s.End.Character+1)
}
