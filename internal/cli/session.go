package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/yaklabco/altree/internal/configloader"
	"github.com/yaklabco/altree/internal/logging"
	"github.com/yaklabco/altree/internal/ui/pretty"
	"github.com/yaklabco/altree/pkg/config"
	"github.com/yaklabco/altree/pkg/host"
	"github.com/yaklabco/altree/pkg/resolve"
	"github.com/yaklabco/altree/pkg/syntax"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

// session is a loaded configuration with a running language server and the
// tree cache and resolver built on it.
type session struct {
	cfg      *config.Config
	workDir  string
	docs     *syntaxtree.Documents
	proc     *host.Process
	cache    *syntaxtree.Cache
	resolver *resolve.Resolver
	styles   *pretty.Styles
}

// loadConfig resolves the configuration for cmd.
func loadConfig(cmd *cobra.Command, flags *globalFlags, requireServer bool) (*configloader.LoadResult, string, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", errors.Errorf("get working directory: %w", err)
	}

	loaded, err := configloader.Load(cmd.Context(), configloader.LoadOptions{
		WorkingDir:    workDir,
		ExplicitPath:  flags.configPath,
		RequireServer: requireServer,
		CLIConfig:     flags.cliConfig(cmd),
	})
	if err != nil {
		return nil, "", errors.Errorf("load configuration: %w", err)
	}
	return loaded, workDir, nil
}

// openSession loads configuration and starts the language server. The
// session logger is attached to cmd's context.
func openSession(cmd *cobra.Command, flags *globalFlags) (*session, error) {
	ctx := cmd.Context()

	loaded, workDir, err := loadConfig(cmd, flags, true)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)
	logging.SetDefault(logger)
	ctx = logging.WithLogger(ctx, logger)
	cmd.SetContext(ctx)
	for _, warning := range loaded.Warnings {
		logger.Warn(warning)
	}
	if len(loaded.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldFiles, loaded.LoadedFrom)
	}
	logger.Debug("configuration resolved",
		logging.FieldProjectRoot, cfg.ProjectRoot,
		logging.FieldCommand, cfg.Server.Command,
		logging.FieldTimeout, cfg.FetchTimeout,
	)

	docs := syntaxtree.NewDocuments(afero.NewOsFs())

	proc, err := host.Start(ctx, cfg.Server, cfg.ProjectRoot, docs, logger)
	if err != nil {
		return nil, errors.Errorf("start language server: %w", err)
	}

	cache := syntaxtree.New(proc, docs,
		syntaxtree.WithLogger(logger),
		syntaxtree.WithFetchTimeout(cfg.FetchTimeout),
		syntaxtree.WithProjectPath(cfg.ProjectRoot),
	)

	return &session{
		cfg:      cfg,
		workDir:  workDir,
		docs:     docs,
		proc:     proc,
		cache:    cache,
		resolver: resolve.New(cache, proc, resolve.WithLogger(logger)),
		styles:   pretty.NewStyles(pretty.IsColorEnabled(cfg.Color, cmd.OutOrStdout())),
	}, nil
}

// Close shuts the language server down.
func (s *session) Close(ctx context.Context) error {
	if err := s.proc.Stop(context.WithoutCancel(ctx)); err != nil {
		logging.FromContext(ctx).Debug("language server shutdown", logging.FieldError, err)
		return err
	}
	return nil
}

// absPath resolves a command-line path against the working directory.
func (s *session) absPath(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.workDir, path)
	}
	return syntaxtree.CleanPath(path)
}

// tree loads the tree of a command-line file and its root.
func (s *session) tree(ctx context.Context, file string) (*syntaxtree.Tree, *syntax.Node, error) {
	tree, err := s.cache.Get(ctx, s.absPath(file))
	if err != nil {
		return nil, nil, err
	}
	root, err := tree.Root()
	if err != nil {
		return nil, nil, err
	}
	return tree, root, nil
}

// display returns path relative to the working directory when it is inside
// it.
func (s *session) display(path string) string {
	rel, err := filepath.Rel(s.workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// withSession opens a session, runs fn and closes the session, keeping
// fn's error first.
func withSession(cmd *cobra.Command, flags *globalFlags, fn func(*session) error) (err error) {
	sess, err := openSession(cmd, flags)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sess.Close(cmd.Context()); err == nil {
			err = closeErr
		}
	}()
	return fn(sess)
}
