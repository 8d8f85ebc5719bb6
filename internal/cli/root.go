// Package cli provides the Cobra command structure for altree.
package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/altree/internal/logging"
	"github.com/yaklabco/altree/pkg/config"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	debug       bool
	configPath  string
	color       string
	format      string
	server      string
	timeout     time.Duration
	projectRoot string
}

// cliConfig returns a configuration holding only the flags that were set,
// so unset flags do not mask file or environment values.
func (f *globalFlags) cliConfig(cmd *cobra.Command) *config.Config {
	cfg := &config.Config{}
	flags := cmd.Flags()

	if flags.Changed("format") {
		cfg.Format = config.OutputFormat(f.format)
	}
	if flags.Changed("color") {
		cfg.Color = f.color
	}
	if flags.Changed("server") {
		cfg.Server.Command = f.server
	}
	if flags.Changed("timeout") {
		cfg.FetchTimeout = f.timeout
	}
	if flags.Changed("project-root") {
		cfg.ProjectRoot = f.projectRoot
	}
	if f.debug {
		cfg.LogLevel = "debug"
	}
	return cfg
}

// NewRootCommand creates the root altree command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "altree",
		Short: "Navigate and query AL syntax trees",
		Long: `altree queries the syntax trees of AL (Business Central) source files.

Trees and cross-file answers come from the AL language server, which altree
starts and drives over the Language Server Protocol. Positions on the command
line are one-based LINE:COL pairs, columns counted in UTF-16 code units.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if flags.debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetFlagErrorFunc(flagError)

	persistent := rootCmd.PersistentFlags()
	persistent.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	persistent.StringVar(&flags.configPath, "config", "", "path to config file")
	persistent.StringVar(&flags.color, "color", "auto", "colorize output: auto, always, never")
	persistent.StringVar(&flags.format, "format", string(config.FormatText), "output format: text, json")
	persistent.StringVar(&flags.server, "server", "", "language server executable (overrides server.command)")
	persistent.DurationVar(&flags.timeout, "timeout", 0, "upper bound for one syntax tree fetch (e.g. 45s)")
	persistent.StringVar(&flags.projectRoot, "project-root", "", "workspace root sent with tree requests")

	rootCmd.AddCommand(newNodeCommand(flags))
	rootCmd.AddCommand(newCollectCommand(flags))
	rootCmd.AddCommand(newDumpCommand(flags))
	rootCmd.AddCommand(newBaseTableCommand(flags))
	rootCmd.AddCommand(newExtendsCommand(flags))
	rootCmd.AddCommand(newDeclarationCommand(flags))
	rootCmd.AddCommand(newReferencesCommand(flags))
	rootCmd.AddCommand(newHoverCommand(flags))
	rootCmd.AddCommand(newWatchCommand(flags))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	helpFormatter := NewHelpFormatter(flags.color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
