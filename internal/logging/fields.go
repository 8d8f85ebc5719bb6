// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError = "error"
	FieldPath  = "path"
	FieldPaths = "paths"
	FieldFiles = "files"

	// Configuration fields.
	FieldProjectRoot = "project_root"
	FieldJobs        = "jobs"
	FieldTimeout     = "timeout"

	// Language server fields.
	FieldCommand = "command"
	FieldMethod  = "method"

	// Tree fields.
	FieldKind  = "kind"
	FieldNodes = "nodes"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesErrored    = "files_errored"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
