// Package config defines core configuration types for altree.
// These types are pure data structures with no dependency on the loader.
package config

import "time"

// DefaultTreeMethod is the JSON-RPC method that returns a syntax tree.
const DefaultTreeMethod = "al/syntaxTree"

// DefaultFetchTimeout bounds a single syntax-tree fetch.
const DefaultFetchTimeout = 30 * time.Second

// OutputFormat specifies how query results are printed.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// IsValid returns true if the output format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

// ServerConfig describes how to start and talk to the AL language server.
type ServerConfig struct {
	// Command is the language server executable.
	Command string `yaml:"command"`

	// Args are passed to Command.
	Args []string `yaml:"args"`

	// Env holds extra KEY=VALUE entries for the server process.
	Env []string `yaml:"env"`

	// TreeMethod is the request method used to fetch syntax trees.
	TreeMethod string `yaml:"tree_method"`
}

// Config is the root configuration structure for altree.
type Config struct {
	// Server configures the language server process.
	Server ServerConfig `yaml:"server"`

	// FetchTimeout bounds each syntax-tree fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// ProjectRoot is the workspace root sent with every tree request.
	// Empty means the directory the configuration was found in, or the
	// working directory.
	ProjectRoot string `yaml:"project_root"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Ignore contains glob patterns for files to skip during discovery.
	Ignore []string `yaml:"ignore"`

	// Jobs limits concurrent tree loads in batch commands. 0 means auto.
	Jobs int `yaml:"jobs"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Color is "auto", "always" or "never".
	Color string `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			TreeMethod: DefaultTreeMethod,
		},
		FetchTimeout: DefaultFetchTimeout,
		LogLevel:     "warn",
		Format:       FormatText,
		Color:        "auto",
	}
}
