// Package syntaxtest builds syntax trees over literal AL source for tests.
//
// Nodes are located by their text: each added node covers the first
// occurrence of its text at or after the end of the parent's previous
// child, which keeps children ordered and non-overlapping.
package syntaxtest

import (
	"fmt"
	"strings"

	"github.com/yaklabco/altree/pkg/syntax"
)

// Builder assembles a tree whose spans point into Source.
type Builder struct {
	Source string

	index *syntax.LineIndex
	root  *syntax.Node
	// cursor holds the byte offset after the last child added to a parent.
	cursor map[*syntax.Node]int
	start  map[*syntax.Node]int
}

// New creates a builder whose root is a CompilationUnit covering the whole
// source.
func New(source string) *Builder {
	idx := syntax.NewLineIndex(source)
	span := syntax.TextSpan{Start: idx.Position(0), End: idx.Position(len(source))}
	root := syntax.NewNode(syntax.KindCompilationUnit, span, span)

	return &Builder{
		Source: source,
		index:  idx,
		root:   root,
		cursor: map[*syntax.Node]int{root: 0},
		start:  map[*syntax.Node]int{root: 0},
	}
}

// Root returns the root node.
func (b *Builder) Root() *syntax.Node {
	return b.root
}

// Add appends a node of kind covering text under parent. It panics if text
// cannot be found, since that is a broken fixture.
func (b *Builder) Add(parent *syntax.Node, kind syntax.Kind, text string) *syntax.Node {
	from := b.cursor[parent]
	if from < b.start[parent] {
		from = b.start[parent]
	}

	rel := strings.Index(b.Source[from:], text)
	if rel < 0 {
		panic(fmt.Sprintf("syntaxtest: %q not found after offset %d", text, from))
	}
	begin := from + rel
	end := begin + len(text)

	span := syntax.TextSpan{Start: b.index.Position(begin), End: b.index.Position(end)}
	node := syntax.NewNode(kind, span, span)
	syntax.AppendChild(parent, node)

	b.cursor[parent] = end
	b.cursor[node] = begin
	b.start[node] = begin

	return node
}

// Named is Add followed by setting the node's Name.
func (b *Builder) Named(parent *syntax.Node, kind syntax.Kind, text, name string) *syntax.Node {
	node := b.Add(parent, kind, text)
	node.Name = name
	return node
}

// Ident adds a node whose Identifier is its own text.
func (b *Builder) Ident(parent *syntax.Node, kind syntax.Kind, text string) *syntax.Node {
	node := b.Add(parent, kind, text)
	node.Identifier = text
	return node
}

// Position returns the position of the n-th (zero-based) occurrence of text
// in the source, offset by delta bytes.
func (b *Builder) Position(text string, n, delta int) syntax.LinePosition {
	offset := -1
	for from := 0; n >= 0; n-- {
		rel := strings.Index(b.Source[from:], text)
		if rel < 0 {
			panic(fmt.Sprintf("syntaxtest: occurrence of %q not found", text))
		}
		offset = from + rel
		from = offset + 1
	}
	return b.index.Position(offset + delta)
}

// CodeunitFixture is the tree of
//
//	codeunit 50100 MyCU { procedure Foo() begin IF X THEN Y; end; }
type CodeunitFixture struct {
	*Builder
	Object, Method, Block, If, X, Statement, Y *syntax.Node
}

// NewCodeunitFixture builds the single-codeunit fixture.
func NewCodeunitFixture() *CodeunitFixture {
	b := New("codeunit 50100 MyCU { procedure Foo() begin IF X THEN Y; end; }")
	f := &CodeunitFixture{Builder: b}

	f.Object = b.Named(b.Root(), syntax.KindCodeunitObject, b.Source, "MyCU")
	b.Ident(f.Object, syntax.KindObjectID, "50100")
	b.Ident(f.Object, syntax.KindIdentifierName, "MyCU")
	f.Method = b.Named(f.Object, syntax.KindMethodDeclaration, "procedure Foo() begin IF X THEN Y; end;", "Foo")
	b.Ident(f.Method, syntax.KindIdentifierName, "Foo")
	f.Block = b.Add(f.Method, syntax.KindBlock, "begin IF X THEN Y; end")
	f.If = b.Add(f.Block, syntax.KindIfStatement, "IF X THEN Y;")
	f.X = b.Ident(f.If, syntax.KindIdentifierName, "X")
	f.Statement = b.Add(f.If, syntax.KindExpressionStatement, "Y")
	f.Y = b.Ident(f.Statement, syntax.KindIdentifierName, "Y")

	return f
}
