package config

import (
	"bytes"
	"strings"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// ServerCommand pre-fills server.command when set.
	ServerCommand string

	// Ignore pre-fills the ignore list when set.
	Ignore []string
}

// GenerateTemplate creates a commented .altree.yml template.
func GenerateTemplate(opts TemplateOptions) []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString("\n\n")

	buf.WriteString("# Language server that answers definition, hover and syntax tree requests\n")
	buf.WriteString("server:\n")
	if opts.ServerCommand != "" {
		buf.WriteString("  command: " + quote(opts.ServerCommand) + "\n")
	} else {
		buf.WriteString("  # command: /path/to/Microsoft.Dynamics.Nav.EditorServices.Host\n")
	}
	buf.WriteString("  # args: []\n")
	buf.WriteString("  # tree_method: " + DefaultTreeMethod + "\n")
	buf.WriteString("\n")

	buf.WriteString("# Upper bound for a single syntax tree fetch\n")
	buf.WriteString("# fetch_timeout: " + DefaultFetchTimeout.String() + "\n")
	buf.WriteString("\n")

	buf.WriteString("# Workspace root sent with tree requests (defaults to this file's directory)\n")
	buf.WriteString("# project_root: .\n")
	buf.WriteString("\n")

	buf.WriteString("# Log level: debug, info, warn or error\n")
	buf.WriteString("# log_level: warn\n")
	buf.WriteString("\n")

	buf.WriteString("# File patterns to skip when discovering AL sources (glob patterns)\n")
	if len(opts.Ignore) > 0 {
		buf.WriteString("ignore:\n")
		for _, pattern := range opts.Ignore {
			buf.WriteString("  - " + quote(pattern) + "\n")
		}
	} else {
		buf.WriteString("# ignore:\n")
		buf.WriteString("#   - \".alpackages/**\"\n")
		buf.WriteString("#   - \"test/**\"\n")
	}

	return buf.Bytes()
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# altree configuration
# See: https://github.com/yaklabco/altree`
}

func quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
}
