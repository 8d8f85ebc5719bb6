package runner

import (
	"go.uber.org/multierr"

	"github.com/yaklabco/altree/pkg/syntax"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

// FileOutcome is the result of loading and visiting one file.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Tree is the loaded tree. It is nil when the text could not be read.
	Tree *syntaxtree.Tree

	// Nodes are the nodes returned by the visit function.
	Nodes []*syntax.Node

	// Error is set if the file could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int `json:"files_discovered"`

	// FilesProcessed is the number of files whose tree loaded and was visited.
	FilesProcessed int `json:"files_processed"`

	// FilesErrored is the number of files that encountered errors.
	FilesErrored int `json:"files_errored"`

	// NodesTotal is the number of nodes returned across all files.
	NodesTotal int `json:"nodes_total"`

	// FilesWithNodes is the number of files with at least one node.
	FilesWithNodes int `json:"files_with_nodes"`
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each processed file, ordered by path.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0
}

// Err combines the errors of every failed file.
func (r *Result) Err() error {
	if r == nil {
		return nil
	}
	var err error
	for _, outcome := range r.Files {
		err = multierr.Append(err, outcome.Error)
	}
	return err
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}

	r.Stats.FilesProcessed++
	r.Stats.NodesTotal += len(outcome.Nodes)
	if len(outcome.Nodes) > 0 {
		r.Stats.FilesWithNodes++
	}
}
