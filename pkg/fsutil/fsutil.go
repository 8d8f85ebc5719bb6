// Package fsutil writes files without exposing partially written content.
package fsutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// DefaultFileMode is the permission mode for newly created files.
const DefaultFileMode os.FileMode = 0o644

// BackupSuffix is appended to a file name to form its sidecar backup.
const BackupSuffix = ".altree.bak"

// WriteAtomic writes content to path through a temp file in the same
// directory and a rename. If mode is 0, DefaultFileMode is used.
//
// On error the temp file is removed and the original file is untouched.
func WriteAtomic(ctx context.Context, fs afero.Fs, path string, content []byte, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return errors.Errorf("write atomic: %w", err)
	}

	if mode == 0 {
		mode = DefaultFileMode
	}

	tmp, err := afero.TempFile(fs, filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return errors.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = fs.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return errors.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return errors.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("close temp file: %w", err)
	}
	if err := fs.Chmod(tmpPath, mode); err != nil {
		return errors.Errorf("chmod temp file: %w", err)
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		return errors.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}

// BackupPath returns the sidecar backup path for path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// CreateBackup copies path to its sidecar backup and returns the backup
// path. It returns "" when path does not exist. An existing backup is
// replaced, so it always holds the content from just before the latest
// overwrite.
func CreateBackup(ctx context.Context, fs afero.Fs, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Errorf("create backup: %w", err)
	}

	stat, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Errorf("stat original for backup: %w", err)
	}
	if stat.IsDir() {
		return "", errors.Errorf("create backup: %s is a directory", path)
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", errors.Errorf("read original for backup: %w", err)
	}

	backupPath := BackupPath(path)
	if err := WriteAtomic(ctx, fs, backupPath, content, stat.Mode().Perm()); err != nil {
		return "", errors.Errorf("write backup: %w", err)
	}
	return backupPath, nil
}
