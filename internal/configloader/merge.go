package configloader

import "github.com/yaklabco/altree/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Slices: override replaces base entirely if override is non-nil
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Server.Command != "" {
		result.Server.Command = override.Server.Command
	}
	if override.Server.TreeMethod != "" {
		result.Server.TreeMethod = override.Server.TreeMethod
	}
	if override.FetchTimeout != 0 {
		result.FetchTimeout = override.FetchTimeout
	}
	if override.ProjectRoot != "" {
		result.ProjectRoot = override.ProjectRoot
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Color != "" {
		result.Color = override.Color
	}

	if override.Server.Args != nil {
		result.Server.Args = append([]string(nil), override.Server.Args...)
	}
	if override.Server.Env != nil {
		result.Server.Env = append([]string(nil), override.Server.Env...)
	}
	if override.Ignore != nil {
		result.Ignore = append([]string(nil), override.Ignore...)
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
