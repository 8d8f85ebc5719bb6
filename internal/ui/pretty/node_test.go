package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/altree/internal/ui/pretty"
	"github.com/yaklabco/altree/pkg/syntax/syntaxtest"
)

func TestFormatNode(t *testing.T) {
	t.Parallel()

	fixture := syntaxtest.NewCodeunitFixture()
	styles := pretty.NewStyles(false)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"with path", "src/MyCU.Codeunit.al", "src/MyCU.Codeunit.al:1:23  MethodDeclaration  Foo"},
		{"without path", "", "1:23  MethodDeclaration  Foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, styles.FormatNode(tt.path, fixture.Method))
		})
	}

	assert.Equal(t, "1:45  IfStatement", styles.FormatNode("", fixture.If))
	assert.Equal(t, "no node", styles.FormatNode("x.al", nil))
}

func TestFormatSourceContext(t *testing.T) {
	t.Parallel()

	result := pretty.NewStyles(false).FormatSourceContext("IF X THEN Y;", 4)

	lines := strings.Split(strings.TrimSuffix(result, "\n"), "\n")
	assert.Equal(t, []string{"    IF X THEN Y;", "       ^"}, lines)
}

func TestFormatFileHeader(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	assert.Equal(t, "a.al (1 node)", styles.FormatFileHeader("a.al", 1))
	assert.Equal(t, "a.al (3 nodes)", styles.FormatFileHeader("a.al", 3))
	assert.Equal(t, "a.al", styles.FormatFileHeader("a.al", 0))
}
