package host

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"gitlab.com/tozd/go/errors"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/yaklabco/altree/pkg/config"
	"github.com/yaklabco/altree/pkg/syntax"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

// LanguageID is the document language announced to the server.
const LanguageID protocol.LanguageIdentifier = "al"

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets the logger for protocol traffic.
func WithClientLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTreeMethod overrides the request method used by FetchTree.
func WithTreeMethod(method string) ClientOption {
	return func(c *Client) {
		if method != "" {
			c.treeMethod = method
		}
	}
}

// Client is an LSP client for the AL language server. It implements Host
// and syntaxtree.Fetcher.
//
// Before a position request the document is announced with didOpen, and
// re-announced when its text has changed since.
type Client struct {
	conn       jsonrpc2.Conn
	docs       syntaxtree.Source
	treeMethod string
	logger     *log.Logger

	mu      sync.Mutex
	opened  map[protocol.DocumentURI]string
	version int32
}

var (
	_ Host               = (*Client)(nil)
	_ syntaxtree.Fetcher = (*Client)(nil)
)

// NewClient starts a client over rwc. docs supplies the text sent with
// didOpen. The connection runs until ctx ends or Close is called.
func NewClient(ctx context.Context, rwc io.ReadWriteCloser, docs syntaxtree.Source, opts ...ClientOption) *Client {
	client := &Client{
		conn:       jsonrpc2.NewConn(jsonrpc2.NewStream(rwc)),
		docs:       docs,
		treeMethod: config.DefaultTreeMethod,
		logger:     log.New(io.Discard),
		opened:     make(map[protocol.DocumentURI]string),
	}
	for _, opt := range opts {
		opt(client)
	}

	client.conn.Go(ctx, client.handle)
	return client
}

// handle answers server-initiated traffic. Notifications are logged and
// dropped; requests are refused.
func (c *Client) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	if _, isNotification := req.(*jsonrpc2.Notification); isNotification {
		c.logger.Debug("server notification", "method", req.Method())
		return nil
	}
	c.logger.Debug("refusing server request", "method", req.Method())
	return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
}

// Initialize performs the initialize/initialized handshake for the
// workspace at rootPath.
func (c *Client) Initialize(ctx context.Context, rootPath string) error {
	rootURI := DocumentURI(rootPath)
	params := protocol.InitializeParams{
		ClientInfo: &protocol.ClientInfo{Name: "altree"},
		RootPath:   rootPath,
		RootURI:    rootURI,
		WorkspaceFolders: []protocol.WorkspaceFolder{
			{URI: string(rootURI), Name: filepath.Base(rootPath)},
		},
	}

	var result json.RawMessage
	if _, err := c.conn.Call(ctx, protocol.MethodInitialize, params, &result); err != nil {
		return errors.Errorf("initialize: %w", err)
	}
	if err := c.conn.Notify(ctx, protocol.MethodInitialized, protocol.InitializedParams{}); err != nil {
		return errors.Errorf("initialized: %w", err)
	}

	c.logger.Debug("language server initialized", "root", rootPath)
	return nil
}

// Shutdown asks the server to shut down and exit, then closes the
// connection.
func (c *Client) Shutdown(ctx context.Context) error {
	_, callErr := c.conn.Call(ctx, protocol.MethodShutdown, nil, nil)
	notifyErr := c.conn.Notify(ctx, protocol.MethodExit, nil)
	closeErr := c.Close()

	switch {
	case callErr != nil:
		return errors.Errorf("shutdown: %w", callErr)
	case notifyErr != nil:
		return errors.Errorf("exit: %w", notifyErr)
	default:
		return closeErr
	}
}

// Close closes the connection without the shutdown handshake.
func (c *Client) Close() error {
	return errors.WithStack(c.conn.Close())
}

// Done is closed when the connection stops.
func (c *Client) Done() <-chan struct{} {
	return c.conn.Done()
}

// FetchTree requests the syntax tree for a snapshot.
func (c *Client) FetchTree(ctx context.Context, req syntaxtree.FetchRequest) (*syntax.Node, error) {
	var result json.RawMessage
	if _, err := c.conn.Call(ctx, c.treeMethod, req, &result); err != nil {
		return nil, errors.Errorf("%s %s: %w", c.treeMethod, req.Path, err)
	}
	if isNull(result) {
		return nil, errors.WithStack(syntax.ErrNoRoot)
	}
	return syntax.Decode(result)
}

// Definition implements Host.
func (c *Client) Definition(ctx context.Context, doc protocol.DocumentURI, pos protocol.Position) ([]protocol.Location, error) {
	if err := c.ensureOpen(ctx, doc); err != nil {
		return nil, err
	}

	params := protocol.DefinitionParams{
		TextDocumentPositionParams: positionParams(doc, pos),
	}
	var result json.RawMessage
	if _, err := c.conn.Call(ctx, protocol.MethodTextDocumentDefinition, params, &result); err != nil {
		return nil, errors.Errorf("definition: %w", err)
	}
	return decodeLocations(result)
}

// References implements Host. The declaration itself is included.
func (c *Client) References(ctx context.Context, doc protocol.DocumentURI, pos protocol.Position) ([]protocol.Location, error) {
	if err := c.ensureOpen(ctx, doc); err != nil {
		return nil, err
	}

	params := protocol.ReferenceParams{
		TextDocumentPositionParams: positionParams(doc, pos),
		Context:                    protocol.ReferenceContext{IncludeDeclaration: true},
	}
	var result json.RawMessage
	if _, err := c.conn.Call(ctx, protocol.MethodTextDocumentReferences, params, &result); err != nil {
		return nil, errors.Errorf("references: %w", err)
	}
	return decodeLocations(result)
}

// Hover implements Host.
func (c *Client) Hover(ctx context.Context, doc protocol.DocumentURI, pos protocol.Position) ([]protocol.Hover, error) {
	if err := c.ensureOpen(ctx, doc); err != nil {
		return nil, err
	}

	params := protocol.HoverParams{
		TextDocumentPositionParams: positionParams(doc, pos),
	}
	var result json.RawMessage
	if _, err := c.conn.Call(ctx, protocol.MethodTextDocumentHover, params, &result); err != nil {
		return nil, errors.Errorf("hover: %w", err)
	}
	return decodeHover(result)
}

// OpenDocument implements Host.
func (c *Client) OpenDocument(ctx context.Context, doc protocol.DocumentURI) (string, error) {
	path, err := Filename(doc)
	if err != nil {
		return "", err
	}
	text, err := c.docs.Text(ctx, path)
	if err != nil {
		return "", err
	}
	if err := c.announce(ctx, doc, text); err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) ensureOpen(ctx context.Context, doc protocol.DocumentURI) error {
	_, err := c.OpenDocument(ctx, doc)
	return err
}

// announce sends didOpen for doc unless the server already has text. A
// changed document is closed and reopened with the full new text.
func (c *Client) announce(ctx context.Context, doc protocol.DocumentURI, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous, isOpen := c.opened[doc]
	if isOpen && previous == text {
		return nil
	}

	if isOpen {
		params := protocol.DidCloseTextDocumentParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc},
		}
		if err := c.conn.Notify(ctx, protocol.MethodTextDocumentDidClose, params); err != nil {
			return errors.Errorf("didClose %s: %w", doc, err)
		}
		delete(c.opened, doc)
	}

	c.version++
	params := protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        doc,
			LanguageID: LanguageID,
			Version:    c.version,
			Text:       text,
		},
	}
	if err := c.conn.Notify(ctx, protocol.MethodTextDocumentDidOpen, params); err != nil {
		return errors.Errorf("didOpen %s: %w", doc, err)
	}
	c.opened[doc] = text

	c.logger.Debug("document announced", "uri", doc, "version", c.version)
	return nil
}

func positionParams(doc protocol.DocumentURI, pos protocol.Position) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc},
		Position:     pos,
	}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// locationOrLink decodes either a Location or a LocationLink.
type locationOrLink struct {
	URI                  protocol.DocumentURI `json:"uri"`
	Range                protocol.Range       `json:"range"`
	TargetURI            protocol.DocumentURI `json:"targetUri"`
	TargetSelectionRange protocol.Range       `json:"targetSelectionRange"`
}

func (l locationOrLink) location() protocol.Location {
	if l.TargetURI != "" {
		return protocol.Location{URI: l.TargetURI, Range: l.TargetSelectionRange}
	}
	return protocol.Location{URI: l.URI, Range: l.Range}
}

// decodeLocations accepts null, a single location, or an array of
// locations or location links.
func decodeLocations(raw json.RawMessage) ([]protocol.Location, error) {
	if isNull(raw) {
		return nil, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] != '[' {
		var single locationOrLink
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, errors.Errorf("decode location: %w", err)
		}
		return []protocol.Location{single.location()}, nil
	}

	var many []locationOrLink
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return nil, errors.Errorf("decode locations: %w", err)
	}
	locations := make([]protocol.Location, 0, len(many))
	for _, item := range many {
		locations = append(locations, item.location())
	}
	return locations, nil
}

// hoverWire accepts every hover contents shape: MarkupContent, a
// MarkedString, or an array of MarkedStrings.
type hoverWire struct {
	Contents json.RawMessage `json:"contents"`
	Range    *protocol.Range `json:"range,omitempty"`
}

type markedString struct {
	Language string `json:"language"`
	Kind     string `json:"kind"`
	Value    string `json:"value"`
}

func decodeHover(raw json.RawMessage) ([]protocol.Hover, error) {
	if isNull(raw) {
		return nil, nil
	}

	var wire hoverWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, errors.Errorf("decode hover: %w", err)
	}

	value, err := markdownOf(wire.Contents)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	return []protocol.Hover{{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: value},
		Range:    wire.Range,
	}}, nil
}

// markdownOf renders hover contents as one markdown string.
func markdownOf(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) {
		return "", nil
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return "", errors.Errorf("decode hover contents: %w", err)
		}
		return text, nil

	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(trimmed, &parts); err != nil {
			return "", errors.Errorf("decode hover contents: %w", err)
		}
		rendered := make([]string, 0, len(parts))
		for _, part := range parts {
			text, err := markdownOf(part)
			if err != nil {
				return "", err
			}
			if text != "" {
				rendered = append(rendered, text)
			}
		}
		return strings.Join(rendered, "\n\n"), nil

	default:
		var marked markedString
		if err := json.Unmarshal(trimmed, &marked); err != nil {
			return "", errors.Errorf("decode hover contents: %w", err)
		}
		if marked.Language != "" {
			return "```" + marked.Language + "\n" + marked.Value + "\n```", nil
		}
		return marked.Value, nil
	}
}
