package configloader

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
	"gitlab.com/tozd/go/errors"

	"github.com/yaklabco/altree/pkg/config"
)

// envVarPrefix is the prefix for all altree environment variables.
const envVarPrefix = "ALTREE_"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeInt
	envTypeDuration
	envTypeSlice
	envTypeArgs
)

type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"SERVER_COMMAND": {field: "server.command", typ: envTypeString, description: "Language server executable"},
	"SERVER_ARGS":    {field: "server.args", typ: envTypeArgs, description: "Language server arguments, split like a shell"},
	"TREE_METHOD":    {field: "server.tree_method", typ: envTypeString, description: "Request method returning syntax trees"},
	"FETCH_TIMEOUT":  {field: "fetch_timeout", typ: envTypeDuration, description: "Upper bound for one tree fetch (e.g. 30s)"},
	"PROJECT_ROOT":   {field: "project_root", typ: envTypeString, description: "Workspace root sent with tree requests"},
	"LOG_LEVEL":      {field: "log_level", typ: envTypeString, description: "Log level: debug, info, warn or error"},
	"IGNORE":         {field: "ignore", typ: envTypeSlice, description: "Comma-separated list of ignore patterns"},
	"JOBS":           {field: "jobs", typ: envTypeInt, description: "Concurrent tree loads in batch commands (0 = auto)"},
	"FORMAT":         {field: "format", typ: envTypeString, description: "Output format: text or json"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with ALTREE_ (e.g., ALTREE_SERVER_COMMAND).
func LoadFromEnv(cfg *config.Config) error {
	return loadFromLookup(cfg, os.LookupEnv)
}

func loadFromLookup(cfg *config.Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value, ok := lookup(envVar)
		if !ok || value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return errors.Errorf("invalid integer for %s: %q", envVar, value)
		}
		cfg.Jobs = i
		return nil
	case envTypeDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.Errorf("invalid duration for %s: %q", envVar, value)
		}
		cfg.FetchTimeout = d
		return nil
	case envTypeSlice:
		cfg.Ignore = parseSliceValue(value)
		return nil
	case envTypeArgs:
		args, err := shlex.Split(value)
		if err != nil {
			return errors.Errorf("invalid arguments for %s: %w", envVar, err)
		}
		cfg.Server.Args = args
		return nil
	default:
		return errors.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "server.command":
		cfg.Server.Command = value
	case "server.tree_method":
		cfg.Server.TreeMethod = value
	case "project_root":
		cfg.ProjectRoot = value
	case "log_level":
		cfg.LogLevel = value
	case "format":
		cfg.Format = config.OutputFormat(value)
	default:
		return errors.Errorf("unknown string field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.description
	}
	return vars
}
