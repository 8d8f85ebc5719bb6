package runner_test

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/yaklabco/altree/pkg/runner"
	"github.com/yaklabco/altree/pkg/syntax"
	"github.com/yaklabco/altree/pkg/syntax/syntaxtest"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

var errBroken = errors.New("broken file")

// fixtureFetcher returns the codeunit fixture, or fails for paths containing
// "Broken".
type fixtureFetcher struct{}

func (fixtureFetcher) FetchTree(_ context.Context, req syntaxtree.FetchRequest) (*syntax.Node, error) {
	if strings.Contains(req.Path, "Broken") {
		return nil, errBroken
	}
	return syntaxtest.NewCodeunitFixture().Root(), nil
}

func newRunner(t *testing.T, fs afero.Fs) *runner.Runner {
	t.Helper()
	return runner.New(syntaxtree.New(fixtureFetcher{}, syntaxtree.NewDocuments(fs)))
}

func collectIfs(_ context.Context, tree *syntaxtree.Tree, _ *syntax.Node) ([]*syntax.Node, error) {
	return tree.CollectNodesOfKind(syntax.KindIfStatement), nil
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	fs := newProject(t, "b/Two.Codeunit.al", "a/One.Codeunit.al", "c/Broken.Codeunit.al")

	result, err := newRunner(t, fs).Run(context.Background(), runner.Options{
		WorkingDir: projectDir,
		Fs:         fs,
		Jobs:       2,
	}, collectIfs)
	require.NoError(t, err)

	require.Len(t, result.Files, 3)
	assert.Equal(t, "/proj/a/One.Codeunit.al", result.Files[0].Path)
	assert.Equal(t, "/proj/b/Two.Codeunit.al", result.Files[1].Path)
	assert.Equal(t, "/proj/c/Broken.Codeunit.al", result.Files[2].Path)

	assert.Len(t, result.Files[0].Nodes, 1)
	assert.Equal(t, syntax.KindIfStatement, result.Files[0].Nodes[0].Kind)

	broken := result.Files[2]
	require.NotNil(t, broken.Tree)
	assert.False(t, broken.Tree.Loaded())
	require.ErrorIs(t, broken.Error, syntaxtree.ErrLoadFailure)

	assert.Equal(t, runner.Stats{
		FilesDiscovered: 3,
		FilesProcessed:  2,
		FilesErrored:    1,
		NodesTotal:      2,
		FilesWithNodes:  2,
	}, result.Stats)
	assert.True(t, result.HasErrors())
	require.ErrorIs(t, result.Err(), syntaxtree.ErrLoadFailure)
}

func TestRunner_Run_NoFiles(t *testing.T) {
	t.Parallel()

	fs := newProject(t, "README.md")

	result, err := newRunner(t, fs).Run(context.Background(), runner.Options{
		WorkingDir: projectDir,
		Fs:         fs,
	}, collectIfs)
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.False(t, result.HasErrors())
	require.NoError(t, result.Err())
}

func TestRunner_Run_VisitError(t *testing.T) {
	t.Parallel()

	fs := newProject(t, "One.Codeunit.al")
	errVisit := errors.New("visit failed")

	result, err := newRunner(t, fs).Run(context.Background(), runner.Options{
		WorkingDir: projectDir,
		Fs:         fs,
	}, func(context.Context, *syntaxtree.Tree, *syntax.Node) ([]*syntax.Node, error) {
		return nil, errVisit
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.ErrorIs(t, result.Files[0].Error, errVisit)
	assert.Equal(t, 1, result.Stats.FilesErrored)
}

func TestRunner_Run_NilVisit(t *testing.T) {
	t.Parallel()

	fs := newProject(t, "One.Codeunit.al")

	result, err := newRunner(t, fs).Run(context.Background(), runner.Options{
		WorkingDir: projectDir,
		Fs:         fs,
	}, nil)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].Tree.Loaded())
	assert.Equal(t, 1, result.Stats.FilesProcessed)
	assert.Zero(t, result.Stats.NodesTotal)
}
