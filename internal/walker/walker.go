// Package walker enumerates source files under a directory root with
// glob-based include and exclude patterns. Patterns use doublestar
// syntax and match the slash-separated path relative to the root.
package walker

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/lsi/internal/debug"
	"github.com/standardbeagle/lsi/internal/types"
)

// DefaultExcludes are directory trees no build keeps sources in.
var DefaultExcludes = []string{
	"**/.git/**",
	"**/.bloop/**",
	"**/.metals/**",
	"**/target/**",
	"**/node_modules/**",
}

// Walker filters a directory walk down to indexable source files.
type Walker struct {
	includes []string
	excludes []string
	maxSize  int64
}

// Options configures a Walker.
type Options struct {
	// Includes restricts the walk to matching files. Empty means every
	// recognized source file.
	Includes []string
	// Excludes are applied after includes; empty means DefaultExcludes.
	Excludes []string
	// MaxFileSize skips files larger than this many bytes; 0 disables
	// the limit.
	MaxFileSize int64
}

// New creates a walker.
func New(opts Options) *Walker {
	excludes := opts.Excludes
	if excludes == nil {
		excludes = DefaultExcludes
	}
	return &Walker{
		includes: opts.Includes,
		excludes: excludes,
		maxSize:  opts.MaxFileSize,
	}
}

// Walk returns the source files under root that pass the filters, as
// absolute paths. Unreadable subtrees are skipped, not fatal.
func (w *Walker) Walk(root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.LogIndexing("walk %s: %v\n", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(abs, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != abs && w.excludedDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !types.IsSourcePath(path) {
			return nil
		}
		if w.excluded(rel) || !w.included(rel) {
			return nil
		}
		if w.maxSize > 0 {
			if info, infoErr := d.Info(); infoErr == nil && info.Size() > w.maxSize {
				debug.LogIndexing("skipping oversized %s\n", path)
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return files, nil
}

func (w *Walker) included(rel string) bool {
	if len(w.includes) == 0 {
		return true
	}
	for _, pattern := range w.includes {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Walker) excluded(rel string) bool {
	for _, pattern := range w.excludes {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// excludedDir prunes whole subtrees: a pattern ending in "/**" excludes
// the directory itself, not only its contents.
func (w *Walker) excludedDir(rel string) bool {
	for _, pattern := range w.excludes {
		trimmed := strings.TrimSuffix(pattern, "/**")
		if ok, err := doublestar.Match(trimmed, rel); err == nil && ok {
			return true
		}
	}
	return false
}
