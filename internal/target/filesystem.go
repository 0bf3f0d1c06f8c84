// Package target provides WriteTarget implementations for the host
// environments frameforge can persist archives to.
package target

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"frameforge/internal/project"
)

// FileSystemProvider grants write targets inside a fixed root directory.
type FileSystemProvider struct {
	root string
}

// NewFileSystemProvider creates a provider rooted at the given directory,
// creating it if needed.
func NewFileSystemProvider(root string) (*FileSystemProvider, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create target directory: %w", err)
	}
	return &FileSystemProvider{root: root}, nil
}

// RequestTarget grants a file target for the suggested name inside the
// provider's root.
func (p *FileSystemProvider) RequestTarget(_ context.Context, suggestedName string) (project.WriteTarget, error) {
	if suggestedName == "" {
		return nil, fmt.Errorf("empty target name")
	}
	return &FileTarget{path: filepath.Join(p.root, filepath.Base(suggestedName))}, nil
}

// FileTarget writes archives to a single file path. Writes are atomic:
// data goes to a temp file in the same directory and is renamed over the
// destination, so a failed write never truncates the previous save.
type FileTarget struct {
	path string
}

// NewFileTarget creates a target for an explicit file path.
func NewFileTarget(path string) *FileTarget {
	return &FileTarget{path: path}
}

// Name returns the target's filename.
func (t *FileTarget) Name() string {
	return filepath.Base(t.path)
}

// Path returns the full destination path.
func (t *FileTarget) Path() string {
	return t.path
}

// WriteAll atomically replaces the file's contents. A destination whose
// directory has vanished or become unwritable reports ErrWriteTargetLost.
func (t *FileTarget) WriteAll(_ context.Context, data []byte) error {
	dir := filepath.Dir(t.path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		if isTargetLost(err) {
			return fmt.Errorf("%w: %s: %v", project.ErrWriteTargetLost, t.path, err)
		}
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, t.path); err != nil {
		if isTargetLost(err) {
			return fmt.Errorf("%w: %s: %v", project.ErrWriteTargetLost, t.path, err)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// isTargetLost classifies errors that mean the grant itself is gone rather
// than a transient write failure.
func isTargetLost(err error) bool {
	return errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist)
}

// Compile-time checks against the core interfaces.
var (
	_ project.TargetProvider = (*FileSystemProvider)(nil)
	_ project.WriteTarget    = (*FileTarget)(nil)
)
