package cli

import (
	"gitlab.com/tozd/go/errors"

	"github.com/yaklabco/altree/internal/configloader"
	"github.com/yaklabco/altree/pkg/host"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

// Exit codes for altree.
const (
	// ExitSuccess indicates a query that found something.
	ExitSuccess = 0

	// ExitNoMatch indicates a query that completed without a result.
	ExitNoMatch = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration errors.
	ExitConfigError = 65

	// ExitServerError indicates the language server failed or sent no tree.
	ExitServerError = 69

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrNoMatch is returned when a query completes without a result.
	ErrNoMatch = errors.New("no match")

	// ErrFilesFailed is returned when some files of a batch could not be
	// loaded.
	ErrFilesFailed = errors.New("some files failed")
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	var validation *configloader.ValidationError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrNoMatch):
		return ExitNoMatch
	case errors.Is(err, ErrUsage), errors.Is(err, ErrInvalidPosition),
		errors.Is(err, ErrUnknownKind), errors.Is(err, ErrInvalidDirection):
		return ExitInvalidUsage
	case errors.As(err, &validation), errors.Is(err, host.ErrNoServerCommand):
		return ExitConfigError
	case errors.Is(err, syntaxtree.ErrLoadFailure):
		return ExitServerError
	case errors.Is(err, ErrFilesFailed):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
