package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"

	"github.com/yaklabco/altree/pkg/host"
	"github.com/yaklabco/altree/pkg/resolve"
	"github.com/yaklabco/altree/pkg/syntax"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

func newBaseTableCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "basetable FILE [LINE:COL]",
		Short: "Show the table an object is built on",
		Long: `Show the declaration of the table an object is built on.

That is the SourceTable of a page or request page, the TableNo of a
codeunit, the extended table of a table extension, and the SourceTable of
the extended page of a page extension. The object is the one at LINE:COL,
or the first object in the file.

Examples:
  altree basetable src/CustomerCard.Page.al
  altree basetable src/CardExt.PageExt.al 1:1`,
		Args: usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withObject(cmd, global, args, func(ctx context.Context, sess *session, tree *syntaxtree.Tree, obj *syntax.Node) error {
				location, err := sess.resolver.BaseTableLocation(ctx, tree, obj)
				if err != nil {
					return err
				}
				return printLocation(cmd, sess, location)
			})
		},
	}
}

func newExtendsCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "extends FILE [LINE:COL]",
		Short: "Show the object an extension extends",
		Long: `Show the object a table or page extension extends. The extension is the
object at LINE:COL, or the first object in the file.

Examples:
  altree extends src/CustExt.TableExt.al`,
		Args: usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withObject(cmd, global, args, func(ctx context.Context, sess *session, tree *syntaxtree.Tree, obj *syntax.Node) error {
				target, err := sess.resolver.ExtendedObject(ctx, tree, obj)
				if err != nil {
					return err
				}
				if target == nil {
					return printNode(cmd, sess, tree, nil, false)
				}
				return printNode(cmd, sess, target.Tree, target.Node, false)
			})
		},
	}
}

func newDeclarationCommand(global *globalFlags) *cobra.Command {
	var kinds []string

	cmd := &cobra.Command{
		Use:   "declaration FILE LINE:COL",
		Short: "Show the declaration of the symbol at a position",
		Long: `Resolve the symbol at a position through the language server and show
the node enclosing its declaration, restricted to --kind when given.

Examples:
  altree declaration src/CustMgt.Codeunit.al 14:9
  altree declaration src/CustMgt.Codeunit.al 14:9 --kind MethodDeclaration`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPosition(cmd, global, args, kinds, func(ctx context.Context, sess *session, tree *syntaxtree.Tree, pos syntax.LinePosition, kinds []syntax.Kind) error {
				target, err := sess.resolver.Declaration(ctx, tree, pos, kinds...)
				if err != nil {
					return err
				}
				if target == nil {
					return printNode(cmd, sess, tree, nil, false)
				}
				return printNode(cmd, sess, target.Tree, target.Node, true)
			})
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "accept only these node kinds (repeatable)")

	return cmd
}

func newReferencesCommand(global *globalFlags) *cobra.Command {
	var kinds []string

	cmd := &cobra.Command{
		Use:   "references FILE LINE:COL",
		Short: "List the references to the symbol at a position",
		Long: `List every reference to the symbol at a position, as the node of one of
the --kind kinds (any kind by default) that encloses each reference.

Examples:
  altree references src/Customer.Table.al 1:13
  altree references src/Customer.Table.al 1:13 --kind PageObject`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPosition(cmd, global, args, kinds, func(ctx context.Context, sess *session, tree *syntaxtree.Tree, pos syntax.LinePosition, kinds []syntax.Kind) error {
				targets, err := sess.resolver.References(ctx, tree, pos, kinds...)
				if err != nil {
					return err
				}
				return printTargets(cmd, sess, targets)
			})
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "accept only these node kinds (repeatable)")

	return cmd
}

type objectFunc func(ctx context.Context, sess *session, tree *syntaxtree.Tree, obj *syntax.Node) error

// withObject loads args[0] and calls fn with the object at the optional
// position args[1], or the file's first object.
func withObject(cmd *cobra.Command, global *globalFlags, args []string, fn objectFunc) error {
	var pos *syntax.LinePosition
	if len(args) > 1 {
		parsed, err := ParsePosition(args[1])
		if err != nil {
			return err
		}
		pos = &parsed
	}

	return withSession(cmd, global, func(sess *session) error {
		ctx := cmd.Context()
		tree, root, err := sess.tree(ctx, args[0])
		if err != nil {
			return err
		}

		var obj *syntax.Node
		if pos != nil {
			obj = tree.FindNode(syntax.ToPosition(*pos), syntax.ObjectKinds()...)
		} else {
			obj = syntax.FindFirst(root, func(n *syntax.Node) bool { return n.Kind.IsObject() })
		}
		if obj == nil {
			return printNode(cmd, sess, tree, nil, false)
		}
		return fn(ctx, sess, tree, obj)
	})
}

type positionFunc func(ctx context.Context, sess *session, tree *syntaxtree.Tree, pos syntax.LinePosition, kinds []syntax.Kind) error

// withPosition parses the FILE LINE:COL arguments and the kind filter, loads
// the file and calls fn.
func withPosition(cmd *cobra.Command, global *globalFlags, args, kindNames []string, fn positionFunc) error {
	pos, err := ParsePosition(args[1])
	if err != nil {
		return err
	}
	kinds, err := ParseKinds(kindNames)
	if err != nil {
		return err
	}

	return withSession(cmd, global, func(sess *session) error {
		tree, _, err := sess.tree(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return fn(cmd.Context(), sess, tree, pos, kinds)
	})
}

// printLocation prints the object declared at location, or the bare
// location when its document has no object there.
func printLocation(cmd *cobra.Command, sess *session, location *protocol.Location) error {
	out := cmd.OutOrStdout()

	if location == nil {
		return printNode(cmd, sess, nil, nil, false)
	}

	if path, err := host.Filename(location.URI); err == nil {
		tree, err := sess.cache.Get(cmd.Context(), path)
		if err == nil && tree.Loaded() {
			if obj := tree.FindNode(location.Range.Start, syntax.ObjectKinds()...); obj != nil {
				return printNode(cmd, sess, tree, obj, false)
			}
		}
	}

	if isJSON(sess.cfg) {
		return writeJSON(out, newLocationRecord(*location))
	}
	record := newLocationRecord(*location)
	start := syntax.FromPosition(location.Range.Start)
	fmt.Fprintln(out, sess.styles.FilePath.Render(sess.display(record.File))+":"+sess.styles.Location.Render(start.String()))
	return nil
}

func printTargets(cmd *cobra.Command, sess *session, targets []resolve.Target) error {
	out := cmd.OutOrStdout()

	if isJSON(sess.cfg) {
		records := make([]nodeRecord, 0, len(targets))
		for _, target := range targets {
			records = append(records, newNodeRecord(target.Tree, target.Node))
		}
		if err := writeJSON(out, records); err != nil {
			return err
		}
	} else {
		for _, target := range targets {
			fmt.Fprintln(out, sess.styles.FormatNode(sess.display(target.Tree.Path), target.Node))
		}
	}

	if len(targets) == 0 {
		return ErrNoMatch
	}
	return nil
}
