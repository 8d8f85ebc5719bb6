package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/yaklabco/altree/internal/logging"
	"github.com/yaklabco/altree/pkg/runner"
	"github.com/yaklabco/altree/pkg/syntax"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

func newWatchCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch KIND FILE...",
		Short: "Re-list nodes of a kind whenever files change",
		Long: `List every node of a kind in the given files, then list them again for each
file that changes on disk, until interrupted.

Examples:
  altree watch MethodDeclaration src/CustMgt.Codeunit.al`,
		Args: usageArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, global, func(sess *session) error {
				return runWatch(cmd, sess, kind, args[1:])
			})
		},
	}
}

func runWatch(cmd *cobra.Command, sess *session, kind syntax.Kind, files []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.FromContext(ctx)
	watcher, err := syntaxtree.NewWatcher(sess.cache, runner.DefaultExtensions(), logger)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Directories are watched so editors that replace files on save keep
	// being followed.
	watched := make(map[string]bool)
	paths := make([]string, 0, len(files))
	for _, file := range files {
		path := sess.absPath(file)
		paths = append(paths, path)

		dir := filepath.Dir(path)
		if watched[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return err
		}
		watched[dir] = true
	}

	for _, path := range paths {
		sess.report(ctx, cmd, kind, path)
	}

	wanted := make(map[string]bool, len(paths))
	for _, path := range paths {
		wanted[path] = true
	}

	onChange := func(path string, op fsnotify.Op) {
		if !wanted[path] {
			return
		}
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			logger.Info("file removed", logging.FieldPath, sess.display(path))
			return
		}
		sess.report(ctx, cmd, kind, path)
	}

	if err := watcher.Run(ctx, onChange); err != nil {
		return errors.Errorf("watch: %w", err)
	}
	return nil
}

// report prints the nodes of kind in path, or logs why it could not.
func (s *session) report(ctx context.Context, cmd *cobra.Command, kind syntax.Kind, path string) {
	tree, err := s.cache.Get(ctx, path)
	if err == nil {
		_, err = tree.Root()
	}
	if err != nil {
		logging.FromContext(ctx).Warn("file failed", logging.FieldPath, s.display(path), logging.FieldError, err)
		return
	}

	out := cmd.OutOrStdout()
	nodes := tree.CollectNodesOfKind(kind)

	if isJSON(s.cfg) {
		records := make([]nodeRecord, 0, len(nodes))
		for _, node := range nodes {
			records = append(records, newNodeRecord(tree, node))
		}
		_ = writeJSON(out, records)
		return
	}

	fmt.Fprintln(out, s.styles.FormatFileHeader(s.display(path), len(nodes)))
	for _, node := range nodes {
		fmt.Fprintln(out, "  "+s.styles.FormatNode("", node))
	}
}
