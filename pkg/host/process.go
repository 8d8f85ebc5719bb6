package host

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/charmbracelet/log"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"github.com/yaklabco/altree/pkg/config"
	"github.com/yaklabco/altree/pkg/syntaxtree"
)

// ErrNoServerCommand is returned by Start when no server command is
// configured.
var ErrNoServerCommand = errors.New("no language server command configured")

// ReadWriteCloser joins a server's stdout and stdin into one stream.
// Writes are flushed immediately.
type ReadWriteCloser struct {
	reader  *bufio.Reader
	writer  *bufio.Writer
	closers []io.Closer

	readMu  sync.Mutex
	writeMu sync.Mutex
}

// NewReadWriteCloser creates a ReadWriteCloser from separate read and write
// ends.
func NewReadWriteCloser(r io.ReadCloser, w io.WriteCloser) *ReadWriteCloser {
	return &ReadWriteCloser{
		reader:  bufio.NewReader(r),
		writer:  bufio.NewWriter(w),
		closers: []io.Closer{w, r},
	}
}

// Read reads from the server's output.
func (rwc *ReadWriteCloser) Read(p []byte) (int, error) {
	rwc.readMu.Lock()
	defer rwc.readMu.Unlock()
	return rwc.reader.Read(p)
}

// Write writes to the server's input and flushes.
func (rwc *ReadWriteCloser) Write(p []byte) (int, error) {
	rwc.writeMu.Lock()
	defer rwc.writeMu.Unlock()

	n, err := rwc.writer.Write(p)
	if err != nil {
		return n, errors.WithStack(err)
	}
	if err := rwc.writer.Flush(); err != nil {
		return n, errors.WithStack(err)
	}
	return n, nil
}

// Close closes both ends and reports every failure.
func (rwc *ReadWriteCloser) Close() error {
	var err error
	for _, closer := range rwc.closers {
		err = multierr.Append(err, closer.Close())
	}
	return err
}

// Process is a running language server with a connected client.
type Process struct {
	*Client

	cmd *exec.Cmd
}

// Start launches the configured language server, connects a client to its
// stdio and performs the initialize handshake for projectRoot.
func Start(ctx context.Context, cfg config.ServerConfig, projectRoot string, docs syntaxtree.Source, logger *log.Logger) (*Process, error) {
	if cfg.Command == "" {
		return nil, errors.WithStack(ErrNoServerCommand)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...) //nolint:gosec // The command comes from user configuration.
	cmd.Dir = projectRoot
	cmd.Env = append(os.Environ(), cfg.Env...)
	cmd.Stderr = logWriter{logger: logger}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Errorf("server stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Errorf("server stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Errorf("start %s: %w", cfg.Command, err)
	}
	logger.Debug("language server started", "command", cfg.Command, "pid", cmd.Process.Pid)

	client := NewClient(ctx, NewReadWriteCloser(stdout, stdin), docs,
		WithClientLogger(logger),
		WithTreeMethod(cfg.TreeMethod),
	)

	proc := &Process{Client: client, cmd: cmd}
	if err := client.Initialize(ctx, projectRoot); err != nil {
		return nil, multierr.Append(err, proc.kill())
	}
	return proc, nil
}

// Stop shuts the server down and waits for it to exit.
func (p *Process) Stop(ctx context.Context) error {
	shutdownErr := p.Shutdown(ctx)
	waitErr := p.cmd.Wait()
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			// The exit status after "exit" is not meaningful.
			waitErr = nil
		}
	}
	return multierr.Append(shutdownErr, errors.WithStack(waitErr))
}

func (p *Process) kill() error {
	closeErr := p.Close()
	if p.cmd.Process == nil {
		return closeErr
	}
	killErr := p.cmd.Process.Kill()
	_ = p.cmd.Wait()
	return multierr.Append(closeErr, errors.WithStack(killErr))
}

// logWriter forwards server stderr to the logger at debug level.
type logWriter struct {
	logger *log.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.logger.Debug("language server", "stderr", string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}
