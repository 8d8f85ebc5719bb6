package syntax

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// LineIndex maps line/character positions onto byte offsets in a text
// snapshot. Characters are counted in UTF-16 code units, as the host does.
type LineIndex struct {
	content string
	starts  []int
}

// NewLineIndex builds the line table for content. Both LF and CRLF line
// endings are handled; the CR belongs to the line it terminates.
func NewLineIndex(content string) *LineIndex {
	starts := []int{0}
	for idx := 0; idx < len(content); idx++ {
		if content[idx] == '\n' {
			starts = append(starts, idx+1)
		}
	}
	return &LineIndex{content: content, starts: starts}
}

// LineCount returns the number of lines in the snapshot.
func (li *LineIndex) LineCount() int {
	return len(li.starts)
}

// Offset converts a position to a byte offset.
// A character past the end of its line is clamped to the line end.
// Returns (0, false) if the line is out of range.
func (li *LineIndex) Offset(pos LinePosition) (int, bool) {
	if pos.Line < 0 || pos.Line >= len(li.starts) || pos.Character < 0 {
		return 0, false
	}

	start := li.starts[pos.Line]
	end := len(li.content)
	if pos.Line+1 < len(li.starts) {
		end = li.starts[pos.Line+1] - 1
		if end > start && li.content[end-1] == '\r' {
			end--
		}
	}

	offset := start
	units := 0
	for offset < end && units < pos.Character {
		r, size := utf8.DecodeRuneInString(li.content[offset:end])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += n
		offset += size
	}

	return offset, true
}

// Text returns the snapshot text between two positions. Positions out of
// range or out of order yield an empty string.
func (li *LineIndex) Text(from, to LinePosition) string {
	start, ok := li.Offset(from)
	if !ok {
		return ""
	}
	end, ok := li.Offset(to)
	if !ok || end < start {
		return ""
	}
	return li.content[start:end]
}

// SpanText returns the snapshot text covered by span.
func (li *LineIndex) SpanText(span TextSpan) string {
	return li.Text(span.Start, span.End)
}

// Position converts a byte offset to a line position. Offsets past the end
// of the snapshot are clamped to the end.
func (li *LineIndex) Position(offset int) LinePosition {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.content) {
		offset = len(li.content)
	}

	line := sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	}) - 1

	units := 0
	for _, r := range li.content[li.starts[line]:offset] {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += n
	}

	return LinePosition{Line: line, Character: units}
}
