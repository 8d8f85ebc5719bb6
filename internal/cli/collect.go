package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/yaklabco/altree/internal/logging"
	"github.com/yaklabco/altree/internal/ui/pretty"
	"github.com/yaklabco/altree/pkg/runner"
	"github.com/yaklabco/altree/pkg/syntax"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

type collectFlags struct {
	jobs            int
	ignore          []string
	includeVendored bool
}

func newCollectCommand(global *globalFlags) *cobra.Command {
	flags := &collectFlags{}

	cmd := &cobra.Command{
		Use:   "collect KIND [PATH...]",
		Short: "List every node of a kind in AL files",
		Long: `List every node of a kind in the given files and directories.

Directories are searched recursively for .al files. Hidden directories such
as .alpackages and conventionally vendored directories are skipped. By
default the current directory is searched.

Examples:
  altree collect MethodDeclaration
  altree collect IfStatement src/
  altree collect TableObject --format json`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, global, flags, args[0], args[1:])
		},
	}

	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel tree loads (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to skip, added to the configured ones")
	cmd.Flags().BoolVar(&flags.includeVendored, "include-vendored", false, "search vendored directories too")

	return cmd
}

// collectOutput is the JSON form of a collect run.
type collectOutput struct {
	Nodes  []nodeRecord `json:"nodes"`
	Errors []fileError  `json:"errors,omitempty"`
	Stats  runner.Stats `json:"stats"`
}

type fileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

func runCollect(cmd *cobra.Command, global *globalFlags, flags *collectFlags, kindName string, paths []string) error {
	kind, err := parseKind(kindName)
	if err != nil {
		return err
	}

	return withSession(cmd, global, func(sess *session) error {
		ctx := cmd.Context()
		logger := logging.FromContext(ctx)

		opts := runner.Options{
			Paths:           paths,
			WorkingDir:      sess.workDir,
			ExcludeGlobs:    append(append([]string(nil), sess.cfg.Ignore...), flags.ignore...),
			IncludeVendored: flags.includeVendored,
			Jobs:            sess.cfg.Jobs,
		}
		if cmd.Flags().Changed("jobs") {
			opts.Jobs = flags.jobs
		}

		logger.Debug("collecting",
			logging.FieldKind, kind,
			logging.FieldPaths, opts.Paths,
			logging.FieldJobs, opts.Jobs,
		)

		visit := func(_ context.Context, tree *syntaxtree.Tree, _ *syntax.Node) ([]*syntax.Node, error) {
			return tree.CollectNodesOfKind(kind), nil
		}
		result, err := runner.New(sess.cache).Run(ctx, opts, visit)
		if err != nil {
			return errors.Errorf("collect %s: %w", kind, err)
		}

		logger.Debug("collect finished",
			logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
			logging.FieldFilesErrored, result.Stats.FilesErrored,
			logging.FieldNodes, result.Stats.NodesTotal,
		)

		if err := printCollect(cmd, sess, result); err != nil {
			return err
		}

		switch {
		case result.HasErrors():
			return errors.Errorf("%w: %s", ErrFilesFailed, result.Err().Error())
		case result.Stats.NodesTotal == 0:
			return ErrNoMatch
		default:
			return nil
		}
	})
}

func printCollect(cmd *cobra.Command, sess *session, result *runner.Result) error {
	out := cmd.OutOrStdout()

	if isJSON(sess.cfg) {
		output := collectOutput{Nodes: []nodeRecord{}, Stats: result.Stats}
		for _, file := range result.Files {
			if file.Error != nil {
				output.Errors = append(output.Errors, fileError{File: file.Path, Error: file.Error.Error()})
				continue
			}
			for _, node := range file.Nodes {
				output.Nodes = append(output.Nodes, newNodeRecord(file.Tree, node))
			}
		}
		return writeJSON(out, output)
	}

	logger := logging.FromContext(cmd.Context())
	for _, file := range result.Files {
		if file.Error != nil {
			logger.Warn("file failed", logging.FieldPath, sess.display(file.Path), logging.FieldError, file.Error)
		}
	}

	table := pretty.NewTableFormatter(sess.styles, terminalWidth(out))
	fmt.Fprint(out, table.FormatTable(displayPaths(sess, result)))
	fmt.Fprint(out, sess.styles.FormatSummaryOneLine(result.Stats))
	return nil
}

// displayPaths returns a copy of result with paths shortened for display.
func displayPaths(sess *session, result *runner.Result) *runner.Result {
	shown := &runner.Result{Stats: result.Stats, Files: make([]runner.FileOutcome, len(result.Files))}
	for i, file := range result.Files {
		file.Path = sess.display(file.Path)
		shown.Files[i] = file
	}
	return shown
}
