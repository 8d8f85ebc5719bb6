package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/altree/pkg/syntax"
)

func lp(line, char int) syntax.LinePosition {
	return syntax.LinePosition{Line: line, Character: char}
}

func TestLineIndex_Offset(t *testing.T) {
	t.Parallel()

	idx := syntax.NewLineIndex("ab\r\ncd\nef")

	tests := []struct {
		name   string
		pos    syntax.LinePosition
		offset int
		ok     bool
	}{
		{"first char", lp(0, 0), 0, true},
		{"end of CRLF line", lp(0, 2), 2, true},
		{"past end clamps before CR", lp(0, 9), 2, true},
		{"second line", lp(1, 1), 5, true},
		{"last line end", lp(2, 2), 9, true},
		{"line out of range", lp(3, 0), 0, false},
		{"negative line", lp(-1, 0), 0, false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			offset, ok := idx.Offset(testCase.pos)
			assert.Equal(t, testCase.ok, ok)
			assert.Equal(t, testCase.offset, offset)
		})
	}

	assert.Equal(t, 3, idx.LineCount())
}

func TestLineIndex_UTF16(t *testing.T) {
	t.Parallel()

	// 'ö' is one UTF-16 unit but two bytes; the emoji is two units, four bytes.
	idx := syntax.NewLineIndex("Kö😀x")

	offset, ok := idx.Offset(lp(0, 2))
	assert.True(t, ok)
	assert.Equal(t, 3, offset)

	offset, ok = idx.Offset(lp(0, 4))
	assert.True(t, ok)
	assert.Equal(t, 7, offset)

	assert.Equal(t, lp(0, 4), idx.Position(7))
	assert.Equal(t, "x", idx.Text(lp(0, 4), lp(0, 5)))
}

func TestLineIndex_Position(t *testing.T) {
	t.Parallel()

	idx := syntax.NewLineIndex("one\ntwo\n")

	assert.Equal(t, lp(0, 0), idx.Position(0))
	assert.Equal(t, lp(0, 3), idx.Position(3))
	assert.Equal(t, lp(1, 0), idx.Position(4))
	assert.Equal(t, lp(2, 0), idx.Position(8))
	assert.Equal(t, lp(2, 0), idx.Position(100))
}

func TestLineIndex_Text(t *testing.T) {
	t.Parallel()

	idx := syntax.NewLineIndex("begin\n  Foo;\nend")

	assert.Equal(t, "Foo;", idx.Text(lp(1, 2), lp(1, 6)))
	assert.Equal(t, "\n  ", idx.Text(lp(0, 5), lp(1, 2)))
	assert.Equal(t, "", idx.Text(lp(1, 6), lp(1, 2)), "reversed positions")
	assert.Equal(t, "end", idx.SpanText(syntax.TextSpan{Start: lp(2, 0), End: lp(2, 3)}))
}
