// Package runner discovers AL files in a project and loads their syntax
// trees concurrently.
package runner

import "github.com/spf13/afero"

// Options controls discovery and a multi-file run.
type Options struct {
	// Paths are the user-specified paths (files or directories) to process.
	// If empty, defaults to the working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// considered AL source. Defaults to DefaultExtensions().
	Extensions []string

	// ExcludeGlobs are doublestar patterns, relative to WorkingDir, used to
	// skip files or directories.
	ExcludeGlobs []string

	// IncludeVendored keeps files in directories that are conventionally
	// vendored, such as node_modules.
	IncludeVendored bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// Fs is the file system to walk. Nil means the OS file system.
	Fs afero.Fs
}

// DefaultExtensions returns the default set of AL file extensions.
func DefaultExtensions() []string {
	return []string{".al"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

func (o Options) fs() afero.Fs {
	if o.Fs == nil {
		return afero.NewOsFs()
	}
	return o.Fs
}
