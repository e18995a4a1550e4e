// internal/storage/archive/localfs.go
package archive

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalFS reads snapshots from a directory on disk.
type LocalFS struct {
	basePath string
}

// NewLocalFS creates a LocalFS rooted at basePath. The directory is not
// created; a missing directory surfaces from List.
func NewLocalFS(basePath string) (*LocalFS, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolving base path: %w", err)
	}
	return &LocalFS{basePath: abs}, nil
}

// Root returns the absolute directory backing the storage.
func (l *LocalFS) Root() string {
	return l.basePath
}

func (l *LocalFS) Describe() string {
	return "localfs:" + l.basePath
}

func (l *LocalFS) fullPath(path string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(path))
}

func (l *LocalFS) Read(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(l.fullPath(path))
}

func (l *LocalFS) List(ctx context.Context, prefix string) ([]string, error) {
	if _, err := os.Stat(l.basePath); err != nil {
		return nil, fmt.Errorf("listing %s: %w", l.basePath, err)
	}

	var paths []string
	searchPath := l.fullPath(prefix)

	err := filepath.WalkDir(searchPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() {
			relPath, _ := filepath.Rel(l.basePath, path)
			paths = append(paths, filepath.ToSlash(relPath))
		}
		return nil
	})

	// A prefix that matches nothing is an empty listing, not a missing root.
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	return paths, err
}

func (l *LocalFS) Write(ctx context.Context, path string, data []byte) error {
	fullPath := l.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("creating directories: %w", err)
	}
	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, fullPath)
}

func (l *LocalFS) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(l.fullPath(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}
