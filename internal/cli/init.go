package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/yaklabco/altree/internal/configloader"
	"github.com/yaklabco/altree/internal/logging"
	"github.com/yaklabco/altree/pkg/config"
	"github.com/yaklabco/altree/pkg/fsutil"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions os.FileMode = 0o644

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	output string
	server string
	ignore []string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new altree configuration file",
		Long: `Create a new .altree.yml configuration file in the current directory.
Every setting is documented in the file; the ones left commented out keep
their defaults.

Examples:
  altree init
  altree init --server-command /opt/al/Microsoft.Dynamics.Nav.EditorServices.Host
  altree init --ignore ".alpackages/**" --ignore "test/**"
  altree init --output custom.yml`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", configloader.ProjectConfigNames()[0], "output file path")
	cmd.Flags().StringVar(&flags.server, "server-command", "", "language server executable to record")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "ignore patterns to record (repeatable)")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewInteractive()
	logger.SetOutput(cmd.ErrOrStderr())

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return errors.Errorf("resolve path: %w", err)
	}

	ctx := cmd.Context()
	fs := afero.NewOsFs()

	if _, err := fs.Stat(absPath); err == nil {
		if !flags.force {
			return errors.Errorf("%w: file %q already exists; use --force to overwrite", ErrUsage, flags.output)
		}
		backup, err := fsutil.CreateBackup(ctx, fs, absPath)
		if err != nil {
			return errors.Errorf("back up existing file: %w", err)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output, "backup", backup)
	} else if !os.IsNotExist(err) {
		return errors.Errorf("stat output: %w", err)
	}

	content := config.GenerateTemplate(config.TemplateOptions{
		ServerCommand: flags.server,
		Ignore:        flags.ignore,
	})

	if err := fsutil.WriteAtomic(ctx, fs, absPath, content, configFilePermissions); err != nil {
		return errors.Errorf("write file: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	if flags.server == "" {
		logger.Info("set server.command to the AL language server before running queries")
	}

	return nil
}
