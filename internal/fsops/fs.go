// Package fsops provides the filesystem primitives the workspace state is
// built on.
//
// All reads and writes of coordination state go through the FS interface so
// that components can be exercised against fakes. Two write shapes exist:
//   - CreateExclusive: create-if-absent, atomic at the filesystem level.
//     Lock records use it; it never overwrites.
//   - AtomicWrite: temp file + rename, for whole documents that are
//     rewritten in place (workspace config).
package fsops

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FS provides an abstraction for filesystem operations.
type FS interface {
	// CreateExclusive creates path with data, failing if path already
	// exists. The returned error satisfies errors.Is(err, fs.ErrExist) in
	// that case.
	CreateExclusive(path string, data []byte, perm os.FileMode) error

	// AtomicWrite writes data to path atomically using temp file + rename.
	AtomicWrite(path string, data []byte, perm os.FileMode) error

	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// ReadDir lists the entries of a directory.
	ReadDir(path string) ([]fs.DirEntry, error)

	// Remove removes a file or empty directory.
	Remove(path string) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm os.FileMode) error

	// Exists checks if a path exists.
	Exists(path string) (bool, error)

	// ValidateRelPath validates a relative path for safety.
	ValidateRelPath(relPath string) error
}

// RealFS implements FS using actual OS operations.
type RealFS struct{}

// NewRealFS creates a new RealFS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

// CreateExclusive writes data to a temp file next to path and hard-links
// it into place. The link fails if path exists, so exactly one of any
// number of concurrent callers, in this process or another, succeeds, and
// path is never observable without its full contents.
func (r *RealFS) CreateExclusive(path string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".sphere-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	// os.Link returns a *LinkError wrapping EEXIST, which satisfies
	// errors.Is(err, fs.ErrExist).
	return os.Link(tmpPath, path)
}

// AtomicWrite writes data to path atomically using temp file + rename.
func (r *RealFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	// Temp file lives next to the target so the rename stays on one device.
	tmpFile, err := os.CreateTemp(dir, ".sphere-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	tmpFile = nil
	return nil
}

// ReadFile reads the entire contents of a file.
func (r *RealFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadDir lists the entries of a directory sorted by name.
func (r *RealFS) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// Remove removes a file or empty directory.
func (r *RealFS) Remove(path string) error {
	return os.Remove(path)
}

// MkdirAll creates a directory and all parent directories.
func (r *RealFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Exists checks if a path exists.
func (r *RealFS) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ValidateRelPath validates a workspace-relative path for safety.
// Both separator forms are accepted; the path is checked after converting
// backslashes to forward slashes.
func (r *RealFS) ValidateRelPath(relPath string) error {
	slashed := strings.ReplaceAll(relPath, `\`, "/")
	cleaned := filepath.ToSlash(filepath.Clean(filepath.FromSlash(slashed)))

	if relPath == "" || cleaned == "." {
		return fmt.Errorf("invalid path: empty or current directory")
	}

	if filepath.IsAbs(filepath.FromSlash(cleaned)) || strings.HasPrefix(cleaned, "/") {
		return fmt.Errorf("invalid path: must be relative, got absolute path %q", relPath)
	}

	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("invalid path: path traversal not allowed in %q", relPath)
	}

	return nil
}
