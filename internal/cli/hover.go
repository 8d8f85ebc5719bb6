package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/altree/pkg/host"
	"github.com/yaklabco/altree/pkg/syntax"
)

type hoverFlags struct {
	markdown bool
}

func newHoverCommand(global *globalFlags) *cobra.Command {
	flags := &hoverFlags{}

	cmd := &cobra.Command{
		Use:   "hover FILE LINE:COL",
		Short: "Show the declared type of the symbol at a position",
		Long: `Ask the language server for hover information at a position and print the
declaration text from it, for example "Customer: Record Customer".

Examples:
  altree hover src/CustMgt.Codeunit.al 14:9
  altree hover src/CustMgt.Codeunit.al 14:9 --markdown`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := ParsePosition(args[1])
			if err != nil {
				return err
			}
			return withSession(cmd, global, func(sess *session) error {
				return runHover(cmd, sess, flags, args[0], pos)
			})
		},
	}

	cmd.Flags().BoolVar(&flags.markdown, "markdown", false, "print the full hover markdown")

	return cmd
}

func runHover(cmd *cobra.Command, sess *session, flags *hoverFlags, file string, pos syntax.LinePosition) error {
	hovers, err := sess.proc.Hover(cmd.Context(), host.DocumentURI(sess.absPath(file)), syntax.ToPosition(pos))
	if err != nil {
		return err
	}

	var texts []string
	if flags.markdown {
		for _, hover := range hovers {
			texts = append(texts, hover.Contents.Value)
		}
	} else {
		texts = host.HoverCodes(hovers)
	}

	out := cmd.OutOrStdout()
	if isJSON(sess.cfg) {
		if texts == nil {
			texts = []string{}
		}
		if err := writeJSON(out, texts); err != nil {
			return err
		}
	} else {
		for _, text := range texts {
			fmt.Fprintln(out, sess.styles.Code.Render(text))
		}
	}

	if len(texts) == 0 {
		return ErrNoMatch
	}
	return nil
}
