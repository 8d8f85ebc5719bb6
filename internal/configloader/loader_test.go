package configloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/yaklabco/altree/pkg/config"
)

// newWorkspace creates a temporary VCS root so upward searches stop inside it.
func newWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func isolated(workDir string) LoadOptions {
	return LoadOptions{
		WorkingDir:       workDir,
		IgnoreUserConfig: true,
		IgnoreEnv:        true,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	dir := newWorkspace(t, nil)

	result, err := Load(context.Background(), isolated(dir))
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, config.DefaultTreeMethod, cfg.Server.TreeMethod)
	assert.Equal(t, config.DefaultFetchTimeout, cfg.FetchTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, filepath.Clean(dir), cfg.ProjectRoot)
	assert.Empty(t, result.LoadedFrom)
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	dir := newWorkspace(t, map[string]string{
		".altree.yml": `
server:
  command: alc-lsp
  args: ["--stdio"]
fetch_timeout: 45s
ignore:
  - "test/**"
`,
		"src/Customer.Table.al": "table 18 Customer { }",
	})

	result, err := Load(context.Background(), isolated(filepath.Join(dir, "src")))
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, "alc-lsp", cfg.Server.Command)
	assert.Equal(t, []string{"--stdio"}, cfg.Server.Args)
	assert.Equal(t, config.DefaultTreeMethod, cfg.Server.TreeMethod)
	assert.Equal(t, 45*time.Second, cfg.FetchTimeout)
	assert.Equal(t, []string{"test/**"}, cfg.Ignore)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, []string{filepath.Join(dir, ".altree.yml")}, result.LoadedFrom)
}

func TestLoad_AppManifestSetsProjectRoot(t *testing.T) {
	t.Parallel()

	dir := newWorkspace(t, map[string]string{
		"app/app.json":     `{"name": "Sample"}`,
		"app/src/Page.al":  "page 50100 P { }",
		"other/readme.txt": "",
	})

	result, err := Load(context.Background(), isolated(filepath.Join(dir, "app", "src")))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app"), result.Config.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, "app", "app.json"), result.Paths.AppManifest)
}

func TestLoad_Precedence(t *testing.T) {
	t.Parallel()

	dir := newWorkspace(t, map[string]string{
		".altree.yml": "server:\n  command: project-lsp\nlog_level: info\nfetch_timeout: 10s\n",
		"custom.yml":  "server:\n  command: explicit-lsp\nfetch_timeout: 20s\n",
	})

	opts := isolated(dir)
	opts.ExplicitPath = filepath.Join(dir, "custom.yml")
	opts.CLIConfig = &config.Config{LogLevel: "debug", Format: config.FormatJSON}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, "explicit-lsp", cfg.Server.Command)
	assert.Equal(t, 20*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.FormatJSON, cfg.Format)
	assert.Equal(t, []string{filepath.Join(dir, ".altree.yml"), filepath.Join(dir, "custom.yml")}, result.LoadedFrom)
}

func TestLoad_RelativeProjectRoot(t *testing.T) {
	t.Parallel()

	dir := newWorkspace(t, map[string]string{".altree.yml": "project_root: app\n"})

	result, err := Load(context.Background(), isolated(dir))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app"), result.Config.ProjectRoot)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		files         map[string]string
		requireServer bool
		field         string
	}{
		{
			name:          "server required",
			requireServer: true,
			field:         "server.command",
		},
		{
			name:  "non-positive timeout",
			files: map[string]string{".altree.yml": "fetch_timeout: -1s\n"},
			field: "fetch_timeout",
		},
		{
			name:  "bad log level",
			files: map[string]string{".altree.yml": "log_level: loud\n"},
			field: "log_level",
		},
		{
			name:  "bad ignore glob",
			files: map[string]string{".altree.yml": "ignore: [\"src/[\"]\n"},
			field: "ignore[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := isolated(newWorkspace(t, tt.files))
			opts.RequireServer = tt.requireServer

			_, err := Load(context.Background(), opts)
			require.Error(t, err)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Parallel()

	dir := newWorkspace(t, map[string]string{".altree.yml": "server: [unclosed\n"})

	_, err := Load(context.Background(), isolated(dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load project config")
}

func TestLoadFromLookup(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"ALTREE_SERVER_COMMAND": "/opt/al/lsp",
		"ALTREE_SERVER_ARGS":    `--stdio --log "/tmp/some dir"`,
		"ALTREE_FETCH_TIMEOUT":  "1m",
		"ALTREE_IGNORE":         "test/**, .alpackages/** ,",
		"ALTREE_JOBS":           "4",
		"ALTREE_FORMAT":         "json",
		"ALTREE_LOG_LEVEL":      "",
	}
	lookup := func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}

	cfg := config.NewConfig()
	require.NoError(t, loadFromLookup(cfg, lookup))

	assert.Equal(t, "/opt/al/lsp", cfg.Server.Command)
	assert.Equal(t, []string{"--stdio", "--log", "/tmp/some dir"}, cfg.Server.Args)
	assert.Equal(t, time.Minute, cfg.FetchTimeout)
	assert.Equal(t, []string{"test/**", ".alpackages/**"}, cfg.Ignore)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, config.FormatJSON, cfg.Format)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadFromLookup_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"ALTREE_FETCH_TIMEOUT": "soon",
		"ALTREE_JOBS":          "many",
		"ALTREE_SERVER_ARGS":   `"unterminated`,
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Parallel()

			lookup := func(name string) (string, bool) {
				if name == key {
					return value, true
				}
				return "", false
			}
			err := loadFromLookup(config.NewConfig(), lookup)
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestEnvVarNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ALTREE_SERVER_COMMAND", GetEnvVarName("server.command"))
	assert.Empty(t, GetEnvVarName("nope"))

	vars := ListEnvVars()
	assert.Len(t, vars, len(envMappings))
	assert.Contains(t, vars, "ALTREE_FETCH_TIMEOUT")
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	base.Server.Command = "base"
	base.Ignore = []string{"a/**"}

	override := &config.Config{
		Server: config.ServerConfig{Args: []string{"--x"}},
		Jobs:   2,
	}

	merged := MergeAll(base, override, nil)
	assert.Equal(t, "base", merged.Server.Command)
	assert.Equal(t, []string{"--x"}, merged.Server.Args)
	assert.Equal(t, []string{"a/**"}, merged.Ignore)
	assert.Equal(t, 2, merged.Jobs)
	assert.Equal(t, config.DefaultTreeMethod, merged.Server.TreeMethod)

	merged.Ignore[0] = "changed"
	assert.Equal(t, "a/**", base.Ignore[0])

	assert.Nil(t, MergeAll())
}

func TestValidationResult(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Jobs = -1
	cfg.Color = "sometimes"

	result := ValidateWithFile(cfg, "/ws/.altree.yml", false)
	assert.False(t, result.Valid())
	assert.False(t, result.HasWarnings())
	assert.Equal(t, []string{
		"error: /ws/.altree.yml: color: invalid color mode \"sometimes\"; must be one of: auto, always, never",
		"error: /ws/.altree.yml: jobs: jobs must be >= 0 (0 means auto)",
	}, result.AllMessages())

	assert.True(t, Validate(nil, true).Valid())
}
