package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/yaklabco/altree/pkg/query"
	"github.com/yaklabco/altree/pkg/syntax"
)

var (
	// ErrUsage wraps argument and flag errors.
	ErrUsage = errors.New("invalid usage")

	// ErrInvalidPosition is returned for a malformed LINE:COL argument.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrUnknownKind is returned for a node kind not in the catalog.
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrInvalidDirection is returned for a --widen value other than left or right.
	ErrInvalidDirection = errors.New("invalid direction")
)

// ParsePosition converts a one-based "LINE:COL" argument to a zero-based
// position.
func ParsePosition(arg string) (syntax.LinePosition, error) {
	lineText, colText, found := strings.Cut(strings.TrimSpace(arg), ":")
	if !found {
		return syntax.LinePosition{}, errors.Errorf("%w %q: want LINE:COL", ErrInvalidPosition, arg)
	}

	line, err := strconv.Atoi(lineText)
	if err != nil || line < 1 {
		return syntax.LinePosition{}, errors.Errorf("%w %q: line must be a positive number", ErrInvalidPosition, arg)
	}
	col, err := strconv.Atoi(colText)
	if err != nil || col < 1 {
		return syntax.LinePosition{}, errors.Errorf("%w %q: column must be a positive number", ErrInvalidPosition, arg)
	}

	return syntax.LinePosition{Line: line - 1, Character: col - 1}, nil
}

// ParseKinds converts kind names, compared case-insensitively, to kinds.
func ParseKinds(names []string) ([]syntax.Kind, error) {
	kinds := make([]syntax.Kind, 0, len(names))
	for _, name := range names {
		kind, err := parseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func parseKind(name string) (syntax.Kind, error) {
	kind, ok := syntax.LookupKind(strings.TrimSpace(name))
	if !ok {
		return syntax.KindUnknown, errors.Errorf("%w %q", ErrUnknownKind, name)
	}
	return kind, nil
}

// ParseDirection converts "left" or "right" to a widening direction.
func ParseDirection(name string) (query.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left":
		return query.Left, nil
	case "right":
		return query.Right, nil
	default:
		return query.Left, errors.Errorf("%w %q: want left or right", ErrInvalidDirection, name)
	}
}

// usageArgs marks positional argument errors as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errors.Errorf("%w: %s", ErrUsage, err.Error())
		}
		return nil
	}
}

func flagError(_ *cobra.Command, err error) error {
	return errors.Errorf("%w: %s", ErrUsage, err.Error())
}
