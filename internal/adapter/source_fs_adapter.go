// Package adapter contains infrastructure adapters for the gest CLI.
package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	m "gest.dev/pkg/gest/internal/model"
)

// ScriptExtension is the extension every script module carries.
const ScriptExtension = ".js"

// SourceFSAdapter abstracts filesystem-specific operations the domain layer
// relies on when discovering and loading scripts.
type SourceFSAdapter interface {
	// Walk traverses the provided root path. When recursive is false the
	// implementation should limit itself to the root directory (no sub-dirs).
	Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// HashFile returns a stable fingerprint (SHA-256) for the file at path.
	HashFile(path m.Path) (string, error)

	// FileInfo returns metadata for a path.
	FileInfo(path m.Path) (os.FileInfo, error)

	// Glob expands doublestar patterns relative to root into a sorted,
	// de-duplicated list of files.
	Glob(ctx context.Context, root m.Path, patterns []string) ([]m.Path, error)

	// Abs returns the absolute, cleaned form of path.
	Abs(path m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter implements SourceFSAdapter on the local disk.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Walk iterates over files under root, optionally descending into subdirectories.
func (a *LocalSourceFSAdapter) Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && path != rootStr && (!recursive || skippedDir(info.Name())) {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(path m.Path) (string, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// Glob expands every pattern concurrently and merges the matches.
func (a *LocalSourceFSAdapter) Glob(ctx context.Context, root m.Path, patterns []string) ([]m.Path, error) {
	results := make([][]string, len(patterns))
	group, ctx := errgroup.WithContext(ctx)

	for i, pattern := range patterns {
		i, pattern := i, pattern
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			full := pattern
			if !filepath.IsAbs(pattern) && root != "" {
				full = filepath.Join(string(root), pattern)
			}

			if !doublestar.ValidatePattern(filepath.ToSlash(full)) {
				return fmt.Errorf("invalid test pattern %q", pattern)
			}

			matches, err := doublestar.FilepathGlob(full)
			if err != nil {
				return fmt.Errorf("failed to expand pattern %q: %w", pattern, err)
			}

			results[i] = matches

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return a.collectFiles(results), nil
}

func (a *LocalSourceFSAdapter) collectFiles(results [][]string) []m.Path {
	seen := make(map[string]struct{})
	files := make([]m.Path, 0)

	for _, matches := range results {
		for _, match := range matches {
			clean := filepath.Clean(match)
			if _, ok := seen[clean]; ok {
				continue
			}

			info, err := os.Stat(clean)
			if err != nil || info.IsDir() {
				continue
			}

			seen[clean] = struct{}{}
			files = append(files, m.Path(clean))
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i] < files[j] })

	return files
}

// Abs returns the absolute, cleaned form of path.
func (a *LocalSourceFSAdapter) Abs(path m.Path) (m.Path, error) {
	abs, err := filepath.Abs(string(path))
	if err != nil {
		return "", err
	}

	return m.Path(abs), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}

func skippedDir(name string) bool {
	return name == "node_modules" || name == "vendor" || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}
