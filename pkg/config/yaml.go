package config

import (
	"bytes"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// yamlIndent is the indentation used when writing configuration.
const yamlIndent = 2

// fileConfig is the on-disk shape. FetchTimeout is kept as text so that
// written files read "30s" rather than a nanosecond count.
type fileConfig struct {
	Server       ServerConfig `yaml:"server"`
	FetchTimeout string       `yaml:"fetch_timeout,omitempty"`
	ProjectRoot  string       `yaml:"project_root,omitempty"`
	LogLevel     string       `yaml:"log_level,omitempty"`
	Ignore       []string     `yaml:"ignore,omitempty"`
	Jobs         int          `yaml:"jobs,omitempty"`
}

// ToYAML serializes the configuration to YAML format.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	out := fileConfig{
		Server:      c.Server,
		ProjectRoot: c.ProjectRoot,
		LogLevel:    c.LogLevel,
		Ignore:      c.Ignore,
		Jobs:        c.Jobs,
	}
	if c.FetchTimeout > 0 {
		out.FetchTimeout = c.FetchTimeout.String()
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(yamlIndent)

	if err := encoder.Encode(out); err != nil {
		return nil, errors.Errorf("encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Errorf("close encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// FromYAML parses a configuration from YAML bytes. Fields absent from data
// are left at their zero value.
func FromYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Server.Args = cloneStrings(c.Server.Args)
	clone.Server.Env = cloneStrings(c.Server.Env)
	clone.Ignore = cloneStrings(c.Ignore)
	return &clone
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
