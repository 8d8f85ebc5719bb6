// Package resolve follows references between AL objects.
//
// All cross-file resolution goes through the host's definition and
// reference providers: this package only decides which span to ask about,
// then loads the target document's tree and continues there.
package resolve

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"gitlab.com/tozd/go/errors"
	"go.lsp.dev/protocol"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yaklabco/altree/pkg/host"
	"github.com/yaklabco/altree/pkg/query"
	"github.com/yaklabco/altree/pkg/syntax"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

const tracerName = "altree.resolve"

// Property names that point at a table.
const (
	propertySourceTable = "SourceTable"
	propertyTableNo     = "TableNo"
)

// Target is a node found in another document.
type Target struct {
	Tree *syntaxtree.Tree
	Node *syntax.Node
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver resolves object references using a tree cache and a host.
//
// Every method returns nil with a nil error when the reference cannot be
// resolved. Errors mean the host failed or a target tree could not be loaded.
type Resolver struct {
	cache  *syntaxtree.Cache
	host   host.Host
	logger *log.Logger
}

// New creates a resolver.
func New(cache *syntaxtree.Cache, h host.Host, opts ...Option) *Resolver {
	resolver := &Resolver{
		cache:  cache,
		host:   h,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

// BaseTableLocation returns the declaration of the table obj is built on:
// the SourceTable of a page or request page, the TableNo of a codeunit, the
// extended table of a table extension, and the SourceTable of the extended
// page of a page extension.
func (r *Resolver) BaseTableLocation(ctx context.Context, tree *syntaxtree.Tree, obj *syntax.Node) (_ *protocol.Location, err error) {
	ctx, span := r.start(ctx, "resolve.BaseTableLocation", tree, obj)
	defer func() { end(span, err) }()

	if tree == nil || obj == nil {
		return nil, nil
	}

	switch obj.Kind {
	case syntax.KindPageObject, syntax.KindRequestPage:
		return r.propertyLocation(ctx, tree, obj, propertySourceTable)

	case syntax.KindCodeunitObject:
		return r.propertyLocation(ctx, tree, obj, propertyTableNo)

	case syntax.KindTableExtensionObject:
		return r.ExtendedObjectLocation(ctx, tree, obj)

	case syntax.KindPageExtensionObject:
		base, err := r.ExtendedObject(ctx, tree, obj)
		if err != nil || base == nil {
			return nil, err
		}
		if !base.Node.Is(syntax.KindPageObject) {
			r.logger.Debug("extended object is not a page", "kind", base.Node.Kind)
			return nil, nil
		}
		return r.propertyLocation(ctx, base.Tree, base.Node, propertySourceTable)

	default:
		return nil, nil
	}
}

// ExtendedObjectLocation returns the declaration of the object a table or
// page extension extends.
func (r *Resolver) ExtendedObjectLocation(ctx context.Context, tree *syntaxtree.Tree, obj *syntax.Node) (*protocol.Location, error) {
	if tree == nil || !obj.Is(syntax.KindTableExtensionObject, syntax.KindPageExtensionObject) {
		return nil, nil
	}

	reference := query.FirstChildNodeOfKind(obj, syntax.KindObjectReference, false)
	if reference == nil {
		return nil, nil
	}
	return r.firstDefinition(ctx, tree.Path, reference.Span.Start)
}

// ExtendedObject loads the document declaring the object that obj extends
// and returns that object.
func (r *Resolver) ExtendedObject(ctx context.Context, tree *syntaxtree.Tree, obj *syntax.Node) (*Target, error) {
	location, err := r.ExtendedObjectLocation(ctx, tree, obj)
	if err != nil || location == nil {
		return nil, err
	}
	return r.objectAt(ctx, *location)
}

// Declaration resolves the symbol at pos and returns the innermost node of
// one of kinds (any kind when none are given) enclosing the declaration.
func (r *Resolver) Declaration(ctx context.Context, tree *syntaxtree.Tree, pos syntax.LinePosition, kinds ...syntax.Kind) (_ *Target, err error) {
	ctx, span := r.start(ctx, "resolve.Declaration", tree, nil)
	defer func() { end(span, err) }()

	if tree == nil {
		return nil, nil
	}

	location, err := r.firstDefinition(ctx, tree.Path, pos)
	if err != nil || location == nil {
		return nil, err
	}

	target, err := r.load(ctx, location.URI)
	if err != nil {
		return nil, err
	}
	root, err := target.Root()
	if err != nil {
		return nil, err
	}

	node := query.FindNode(root, location.Range.Start, kinds...)
	if node == nil {
		return nil, nil
	}
	return &Target{Tree: target, Node: node}, nil
}

// References returns, for every reference to the symbol at pos, the
// innermost node of one of kinds enclosing it. References whose document
// has no such node are skipped.
func (r *Resolver) References(ctx context.Context, tree *syntaxtree.Tree, pos syntax.LinePosition, kinds ...syntax.Kind) (_ []Target, err error) {
	ctx, span := r.start(ctx, "resolve.References", tree, nil)
	defer func() { end(span, err) }()

	if tree == nil {
		return nil, nil
	}

	locations, err := r.host.References(ctx, host.DocumentURI(tree.Path), syntax.ToPosition(pos))
	if err != nil {
		return nil, err
	}

	targets := make([]Target, 0, len(locations))
	for _, location := range locations {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		target, err := r.load(ctx, location.URI)
		if err != nil {
			return nil, err
		}
		root, err := target.Root()
		if err != nil {
			return nil, err
		}
		if node := query.FindNode(root, location.Range.Start, kinds...); node != nil {
			targets = append(targets, Target{Tree: target, Node: node})
		}
	}
	span.SetAttributes(attribute.Int("references", len(targets)))
	return targets, nil
}

// propertyLocation resolves the definition of the named property's value.
func (r *Resolver) propertyLocation(ctx context.Context, tree *syntaxtree.Tree, obj *syntax.Node, name string) (*protocol.Location, error) {
	if tree == nil {
		return nil, nil
	}
	value := tree.PropertyValue(obj, name)
	if value == nil {
		r.logger.Debug("property not found", "object", obj.String(), "property", name)
		return nil, nil
	}
	return r.firstDefinition(ctx, tree.Path, value.Span.Start)
}

func (r *Resolver) firstDefinition(ctx context.Context, path string, pos syntax.LinePosition) (*protocol.Location, error) {
	locations, err := r.host.Definition(ctx, host.DocumentURI(path), syntax.ToPosition(pos))
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, nil
	}
	return &locations[0], nil
}

// objectAt returns the object declared at location, or the document's first
// object when location is outside every object.
func (r *Resolver) objectAt(ctx context.Context, location protocol.Location) (*Target, error) {
	target, err := r.load(ctx, location.URI)
	if err != nil {
		return nil, err
	}
	root, err := target.Root()
	if err != nil {
		return nil, err
	}

	obj := query.FindNode(root, location.Range.Start, syntax.ObjectKinds()...)
	if obj == nil {
		obj = syntax.FindFirst(root, func(n *syntax.Node) bool { return n.Kind.IsObject() })
	}
	if obj == nil {
		return nil, nil
	}
	return &Target{Tree: target, Node: obj}, nil
}

// load opens doc through the host and returns its tree for that text.
func (r *Resolver) load(ctx context.Context, doc protocol.DocumentURI) (*syntaxtree.Tree, error) {
	path, err := host.Filename(doc)
	if err != nil {
		return nil, err
	}
	text, err := r.host.OpenDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	return r.cache.GetDocument(ctx, path, text)
}

func (r *Resolver) start(ctx context.Context, name string, tree *syntaxtree.Tree, obj *syntax.Node) (context.Context, trace.Span) {
	attrs := make([]attribute.KeyValue, 0, 2)
	if tree != nil {
		attrs = append(attrs, attribute.String("path", tree.Path))
	}
	if obj != nil {
		attrs = append(attrs, attribute.String("kind", obj.Kind.String()))
	}
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
