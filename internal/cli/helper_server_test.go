package cli_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/yaklabco/altree/pkg/config"
	"github.com/yaklabco/altree/pkg/host"
	"github.com/yaklabco/altree/pkg/syntax"
	"github.com/yaklabco/altree/pkg/syntax/syntaxtest"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

// helperServerEnv makes the test binary act as a language server on its
// stdio instead of running tests.
const helperServerEnv = "GO_ALTREE_HELPER_SERVER"

// Workspace files understood by the helper server.
const (
	tableFile    = "Customer.Table.al"
	pageFile     = "CustomerCard.Page.al"
	codeunitFile = "MyCU.Codeunit.al"
	brokenFile   = "Broken.Codeunit.al"

	tableText  = "table 50101 Customer { }"
	pageText   = `page 50100 "Customer Card" { SourceTable = Customer; }`
	brokenText = "codeunit 50109 Broken { "
	hoverText  = "```al\nCustomer: Record Customer\n```"
)

func TestMain(m *testing.M) {
	if os.Getenv(helperServerEnv) == "1" {
		os.Exit(serveHelper())
	}
	os.Exit(m.Run())
}

func serveHelper() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(host.NewReadWriteCloser(os.Stdin, os.Stdout)))
	conn.Go(ctx, func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		return handleHelper(ctx, reply, req, cancel)
	})

	select {
	case <-ctx.Done():
	case <-conn.Done():
	}
	return 0
}

func handleHelper(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request, exit context.CancelFunc) error {
	if _, isNotification := req.(*jsonrpc2.Notification); isNotification {
		if req.Method() == protocol.MethodExit {
			exit()
		}
		return nil
	}

	switch req.Method() {
	case protocol.MethodInitialize:
		return reply(ctx, map[string]any{"capabilities": map[string]any{}}, nil)

	case protocol.MethodShutdown:
		return reply(ctx, nil, nil)

	case config.DefaultTreeMethod:
		var params syntaxtree.FetchRequest
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		root := helperTree(params.Path, params.Source)
		if root == nil {
			return reply(ctx, nil, nil)
		}
		return reply(ctx, syntax.Response{Root: root}, nil)

	case protocol.MethodTextDocumentDefinition:
		var params protocol.DefinitionParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		path, err := host.Filename(params.TextDocument.URI)
		if err != nil || filepath.Base(path) != pageFile {
			return reply(ctx, nil, nil)
		}
		return reply(ctx, tableLocation(filepath.Dir(path)), nil)

	case protocol.MethodTextDocumentReferences:
		var params protocol.ReferenceParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		path, err := host.Filename(params.TextDocument.URI)
		if err != nil || filepath.Base(path) != tableFile {
			return reply(ctx, []protocol.Location{}, nil)
		}
		dir := filepath.Dir(path)
		return reply(ctx, []protocol.Location{tableLocation(dir), pageReference(dir)}, nil)

	case protocol.MethodTextDocumentHover:
		var params protocol.HoverParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		path, err := host.Filename(params.TextDocument.URI)
		if err != nil || filepath.Base(path) != pageFile {
			return reply(ctx, nil, nil)
		}
		return reply(ctx, protocol.Hover{
			Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: hoverText},
		}, nil)

	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

// tableLocation is the identifier of the Customer table.
func tableLocation(dir string) protocol.Location {
	start := strings.Index(tableText, "Customer")
	return protocol.Location{
		URI: host.DocumentURI(filepath.Join(dir, tableFile)),
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: uint32(start)},
			End:   protocol.Position{Line: 0, Character: uint32(start + len("Customer"))},
		},
	}
}

// pageReference is the SourceTable value of the page.
func pageReference(dir string) protocol.Location {
	start := strings.Index(pageText, "Customer;")
	return protocol.Location{
		URI: host.DocumentURI(filepath.Join(dir, pageFile)),
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: uint32(start)},
			End:   protocol.Position{Line: 0, Character: uint32(start + len("Customer"))},
		},
	}
}

// helperTree builds the tree of a workspace file, or nil for files the
// server cannot parse.
func helperTree(path, source string) *syntax.Node {
	switch filepath.Base(path) {
	case tableFile:
		b := syntaxtest.New(source)
		table := b.Named(b.Root(), syntax.KindTableObject, b.Source, "Customer")
		b.Ident(table, syntax.KindObjectID, "50101")
		b.Ident(table, syntax.KindIdentifierName, "Customer")
		return b.Root()

	case pageFile:
		b := syntaxtest.New(source)
		page := b.Named(b.Root(), syntax.KindPageObject, b.Source, "Customer Card")
		b.Ident(page, syntax.KindObjectID, "50100")
		b.Ident(page, syntax.KindIdentifierName, `"Customer Card"`)
		props := b.Add(page, syntax.KindPropertyList, "SourceTable = Customer;")
		property := b.Add(props, syntax.KindProperty, "SourceTable = Customer")
		b.Ident(property, syntax.KindPropertyName, "SourceTable")
		b.Ident(property, syntax.KindObjectReferencePropertyValue, "Customer")
		return b.Root()

	case codeunitFile:
		return syntaxtest.NewCodeunitFixture().Root()

	default:
		return nil
	}
}
