package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/altree/pkg/config"
)

func TestConfigClone(t *testing.T) {
	t.Parallel()

	t.Run("nil config returns nil", func(t *testing.T) {
		t.Parallel()
		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("deep copies slices", func(t *testing.T) {
		t.Parallel()
		original := &config.Config{
			Server: config.ServerConfig{Command: "alc", Args: []string{"--stdio"}},
			Ignore: []string{".alpackages/**"},
			Format: config.FormatJSON,
		}

		clone := original.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, original, clone)
		assert.Equal(t, original, clone)

		clone.Server.Args[0] = "--pipe"
		clone.Ignore[0] = "test/**"
		assert.Equal(t, "--stdio", original.Server.Args[0])
		assert.Equal(t, ".alpackages/**", original.Ignore[0])
	})
}

func TestYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	original := config.NewConfig()
	original.Server.Command = "alc"
	original.Server.Args = []string{"--stdio"}
	original.FetchTimeout = 45 * time.Second
	original.Ignore = []string{"test/**"}

	data, err := original.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "fetch_timeout: 45s")

	parsed, err := config.FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, original.Server, parsed.Server)
	assert.Equal(t, 45*time.Second, parsed.FetchTimeout)
	assert.Equal(t, original.Ignore, parsed.Ignore)
	assert.Equal(t, original.LogLevel, parsed.LogLevel)
}

func TestFromYAML(t *testing.T) {
	t.Parallel()

	cfg, err := config.FromYAML([]byte(`
server:
  command: alc
  tree_method: custom/tree
fetch_timeout: 2m
project_root: /ws
`))
	require.NoError(t, err)
	assert.Equal(t, "alc", cfg.Server.Command)
	assert.Equal(t, "custom/tree", cfg.Server.TreeMethod)
	assert.Equal(t, 2*time.Minute, cfg.FetchTimeout)
	assert.Equal(t, "/ws", cfg.ProjectRoot)

	_, err = config.FromYAML([]byte("server: [unterminated"))
	require.Error(t, err)
}

func TestGenerateTemplate(t *testing.T) {
	t.Parallel()

	plain := string(config.GenerateTemplate(config.TemplateOptions{}))
	assert.Contains(t, plain, "# altree configuration")
	assert.Contains(t, plain, "# command:")

	cfg, err := config.FromYAML([]byte(plain))
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.Command)

	filled := config.GenerateTemplate(config.TemplateOptions{
		ServerCommand: "/opt/al/host",
		Ignore:        []string{"test/**"},
	})
	cfg, err = config.FromYAML(filled)
	require.NoError(t, err)
	assert.Equal(t, "/opt/al/host", cfg.Server.Command)
	assert.Equal(t, []string{"test/**"}, cfg.Ignore)
}

func TestOutputFormatIsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, config.FormatText.IsValid())
	assert.True(t, config.FormatJSON.IsValid())
	assert.False(t, config.OutputFormat("sarif").IsValid())
}
