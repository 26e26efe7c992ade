package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FS is a filesystem-backed Store rooted at one job's directory.
type FS struct {
	root string
}

// NewFS creates the job directory under baseDir and returns a Store
// rooted at it.
func NewFS(baseDir, jobID string) (*FS, error) {
	if jobID == "" {
		return nil, fmt.Errorf("store: empty job id")
	}
	root := filepath.Join(baseDir, jobID)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create job dir: %w", err)
	}
	return &FS{root: root}, nil
}

// Root returns the absolute job directory.
func (f *FS) Root() string { return f.root }

// Put implements Store.
func (f *FS) Put(_ context.Context, relpath string, data []byte) error {
	clean, err := cleanRelPath(relpath)
	if err != nil {
		return err
	}
	full := filepath.Join(f.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", clean, err)
	}
	return nil
}

// Get implements Store.
func (f *FS) Get(_ context.Context, relpath string) ([]byte, error) {
	clean, err := cleanRelPath(relpath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(clean)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", clean, err)
	}
	return data, nil
}

// List implements Store. Returned paths are slash-separated and
// relative to the job root.
func (f *FS) List(_ context.Context, prefix string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list job dir: %w", err)
	}
	if prefix != "" {
		filtered := out[:0]
		for _, p := range out {
			if p == prefix || hasPathPrefix(p, prefix) {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	sort.Strings(out)
	return out, nil
}

func hasPathPrefix(p, prefix string) bool {
	return len(p) > len(prefix) && p[:len(prefix)] == prefix && p[len(prefix)] == '/'
}
