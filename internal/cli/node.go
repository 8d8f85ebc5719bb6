package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/altree/pkg/query"
	"github.com/yaklabco/altree/pkg/syntax"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

type nodeFlags struct {
	kinds     []string
	widen     string
	steps     int
	noContext bool
}

func newNodeCommand(global *globalFlags) *cobra.Command {
	flags := &nodeFlags{}

	cmd := &cobra.Command{
		Use:   "node FILE LINE:COL",
		Short: "Show the innermost node at a position",
		Long: `Show the innermost syntax node whose full span contains a position.

With --kind, the result is restricted to nodes of the given kinds: the
deepest node of an accepted kind on the containment path to the position
is returned, however many levels up it is, or nothing if no node on that
path is accepted.

With --widen, the node is widened to its ancestors for as long as only
blanks or a single ";" separate it from its parent on that side.

Examples:
  altree node src/MyCU.Codeunit.al 12:5
  altree node src/MyCU.Codeunit.al 12:5 --kind IfStatement
  altree node src/MyCU.Codeunit.al 12:5 --kind IfStatement --widen right`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd, global, flags, args[0], args[1])
		},
	}

	cmd.Flags().StringSliceVar(&flags.kinds, "kind", nil, "accept only these node kinds (repeatable)")
	cmd.Flags().StringVar(&flags.widen, "widen", "", "widen the node: left or right")
	cmd.Flags().IntVar(&flags.steps, "steps", 0, "maximum widening steps (0 = unlimited)")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide the source line")

	return cmd
}

func runNode(cmd *cobra.Command, global *globalFlags, flags *nodeFlags, file, position string) error {
	pos, err := ParsePosition(position)
	if err != nil {
		return err
	}
	kinds, err := ParseKinds(flags.kinds)
	if err != nil {
		return err
	}
	var dir query.Direction
	if flags.widen != "" {
		if dir, err = ParseDirection(flags.widen); err != nil {
			return err
		}
	}

	return withSession(cmd, global, func(sess *session) error {
		tree, _, err := sess.tree(cmd.Context(), file)
		if err != nil {
			return err
		}

		node := tree.FindNode(syntax.ToPosition(pos), kinds...)
		if node != nil && flags.widen != "" {
			node = tree.ReduceLevels(node, dir, flags.steps)
		}

		return printNode(cmd, sess, tree, node, !flags.noContext)
	})
}

// printNode writes node in the configured format. A nil node prints as
// such and yields ErrNoMatch; tree may then be nil too.
func printNode(cmd *cobra.Command, sess *session, tree *syntaxtree.Tree, node *syntax.Node, withContext bool) error {
	out := cmd.OutOrStdout()

	if isJSON(sess.cfg) {
		var record *nodeRecord
		if node != nil {
			r := newNodeRecord(tree, node)
			record = &r
		}
		if err := writeJSON(out, record); err != nil {
			return err
		}
	} else {
		path := ""
		if tree != nil {
			path = sess.display(tree.Path)
		}
		fmt.Fprintln(out, sess.styles.FormatNode(path, node))
		if node != nil && withContext {
			start := node.Span.Start
			fmt.Fprint(out, sess.styles.FormatSourceContext(lineText(tree.Lines(), start.Line), start.Character+1))
		}
	}

	if node == nil {
		return ErrNoMatch
	}
	return nil
}
