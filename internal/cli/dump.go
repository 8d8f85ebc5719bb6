package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/altree/internal/ui/pretty"
	"github.com/yaklabco/altree/pkg/syntax"
)

type dumpFlags struct {
	depth int
	at    string
	raw   bool
}

func newDumpCommand(global *globalFlags) *cobra.Command {
	flags := &dumpFlags{}

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print the syntax tree of a file",
		Long: `Print the syntax tree of a file, one node per line with its span.

With --at, only the subtree of the innermost node at that position is shown.
With --format json the tree is printed in the language server's wire shape.

Examples:
  altree dump src/MyCU.Codeunit.al
  altree dump src/MyCU.Codeunit.al --depth 3
  altree dump src/MyCU.Codeunit.al --at 12:5`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, global, flags, args[0])
		},
	}

	cmd.Flags().IntVar(&flags.depth, "depth", 0, "levels to print below the top node (0 = all)")
	cmd.Flags().StringVar(&flags.at, "at", "", "print the subtree at LINE:COL")
	cmd.Flags().BoolVar(&flags.raw, "no-source", false, "leave out the source text of leaves")

	return cmd
}

func runDump(cmd *cobra.Command, global *globalFlags, flags *dumpFlags, file string) error {
	var (
		pos   syntax.LinePosition
		hasAt = flags.at != ""
	)
	if hasAt {
		var err error
		if pos, err = ParsePosition(flags.at); err != nil {
			return err
		}
	}

	return withSession(cmd, global, func(sess *session) error {
		tree, root, err := sess.tree(cmd.Context(), file)
		if err != nil {
			return err
		}

		top := root
		if hasAt {
			if top = tree.FindNode(syntax.ToPosition(pos)); top == nil {
				return ErrNoMatch
			}
		}

		out := cmd.OutOrStdout()
		if isJSON(sess.cfg) {
			return writeJSON(out, top)
		}

		opts := pretty.TreeOptions{
			MaxDepth: flags.depth,
			Width:    terminalWidth(out),
		}
		if !flags.raw {
			opts.Source = tree.Lines()
		}
		fmt.Fprint(out, sess.styles.RenderTree(top, opts))
		return nil
	})
}
