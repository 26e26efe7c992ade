// Package store persists harvest artifacts under per-job prefixes.
//
// One Store instance is scoped to a single job: downloaded documents
// under pdfs/, the report and journal under results/, validated records
// under json/. FS keeps artifacts on the local filesystem; S3 hands
// them off to an object store.
package store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound marks a Get for an object that does not exist.
var ErrNotFound = errors.New("store: object not found")

// Per-job artifact prefixes.
const (
	DirDocuments = "pdfs"
	DirResults   = "results"
	DirRecords   = "json"
)

// Store is the artifact sink of one job. Relative paths use forward
// slashes on every backend.
type Store interface {
	// Put writes data at relpath, creating parents as needed.
	Put(ctx context.Context, relpath string, data []byte) error

	// Get reads the object at relpath. Returns ErrNotFound when absent.
	Get(ctx context.Context, relpath string) ([]byte, error)

	// List returns the relative paths of all objects under prefix, in
	// lexical order. An empty prefix lists the whole job.
	List(ctx context.Context, prefix string) ([]string, error)
}

// DocumentPath places a downloaded document under the pdfs/ prefix.
func DocumentPath(name string) string { return path.Join(DirDocuments, name) }

// ResultPath places a report or journal under the results/ prefix.
func ResultPath(name string) string { return path.Join(DirResults, name) }

// RecordPath places a validated record under the json/ prefix.
func RecordPath(name string) string { return path.Join(DirRecords, name) }

// cleanRelPath validates and normalizes a store-relative path.
func cleanRelPath(relpath string) (string, error) {
	if relpath == "" {
		return "", fmt.Errorf("store: empty path")
	}
	if strings.HasPrefix(relpath, "/") {
		return "", fmt.Errorf("store: absolute path %q", relpath)
	}
	clean := path.Clean(relpath)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("store: path %q escapes the job prefix", relpath)
	}
	return clean, nil
}

// Handoff copies every object of src into dst and returns the number of
// objects copied. Used to push a finished job directory to the remote
// backend.
func Handoff(ctx context.Context, src, dst Store) (int, error) {
	paths, err := src.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("handoff list: %w", err)
	}
	for i, p := range paths {
		data, err := src.Get(ctx, p)
		if err != nil {
			return i, fmt.Errorf("handoff read %s: %w", p, err)
		}
		if err := dst.Put(ctx, p, data); err != nil {
			return i, fmt.Errorf("handoff write %s: %w", p, err)
		}
	}
	return len(paths), nil
}
