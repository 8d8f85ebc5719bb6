// Package host talks to the AL language server on behalf of the query
// engine.
//
// The engine never resolves symbols across files itself. It finds the span
// to ask about and hands that position to a Host, then re-enters its own
// tree queries at whatever location comes back.
package host

import (
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// ErrNotFileURI is returned for document URIs that do not name a local file.
var ErrNotFileURI = errors.New("not a file URI")

// Host is the command surface the engine consumes. Empty results mean
// "not found" and are returned as empty slices with a nil error; errors are
// reserved for transport failures.
type Host interface {
	// Definition returns the declaration locations of the symbol at pos.
	Definition(ctx context.Context, doc protocol.DocumentURI, pos protocol.Position) ([]protocol.Location, error)

	// References returns every location that refers to the symbol at pos.
	References(ctx context.Context, doc protocol.DocumentURI, pos protocol.Position) ([]protocol.Location, error)

	// Hover returns hover information for the symbol at pos.
	Hover(ctx context.Context, doc protocol.DocumentURI, pos protocol.Position) ([]protocol.Hover, error)

	// OpenDocument makes doc known to the server and returns its text.
	OpenDocument(ctx context.Context, doc protocol.DocumentURI) (string, error)
}

// DocumentURI converts a file path to a document URI.
func DocumentURI(path string) protocol.DocumentURI {
	return protocol.DocumentURI(uri.File(path))
}

// Filename converts a file document URI back to a file path.
func Filename(doc protocol.DocumentURI) (string, error) {
	if !strings.HasPrefix(string(doc), uri.FileScheme+"://") {
		return "", errors.Errorf("%w: %s", ErrNotFileURI, doc)
	}
	return uri.URI(doc).Filename(), nil
}
