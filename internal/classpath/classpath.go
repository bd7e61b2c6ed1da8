// Package classpath tracks the source roots (directories and source jars)
// registered with the index and resolves relative source paths against
// them. Jar entries are addressed with the "<jar>!/<entry>" convention
// from pkg/pathutil.
package classpath

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/standardbeagle/lsi/internal/debug"
	lsierrors "github.com/standardbeagle/lsi/internal/errors"
	"github.com/standardbeagle/lsi/pkg/pathutil"
)

// Classpath is the scanned-roots registry plus the open archive handles.
// It is safe for concurrent use; registration is exactly-once per root.
type Classpath struct {
	mu    sync.RWMutex
	roots map[string]struct{}
	order []string
	jars  map[string]*zip.ReadCloser
}

// New creates an empty classpath.
func New() *Classpath {
	return &Classpath{
		roots: make(map[string]struct{}),
		jars:  make(map[string]*zip.ReadCloser),
	}
}

// AddEntry registers a source root (directory or jar) and reports whether
// it was newly added. Registration is keyed by cleaned absolute path, so
// adding the same root twice is a no-op and concurrent calls agree on a
// single winner.
func (cp *Classpath) AddEntry(path string) bool {
	key := normalizeRoot(path)

	cp.mu.Lock()
	defer cp.mu.Unlock()
	if _, exists := cp.roots[key]; exists {
		return false
	}
	cp.roots[key] = struct{}{}
	cp.order = append(cp.order, key)
	debug.LogArchive("registered root %s\n", key)
	return true
}

// Roots returns the registered roots in registration order.
func (cp *Classpath) Roots() []string {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	out := make([]string, len(cp.order))
	copy(out, cp.order)
	return out
}

// IsJarRoot reports whether a registered root is an archive rather than a
// directory, by extension.
func IsJarRoot(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jar", ".zip", ".srcjar":
		return true
	default:
		return false
	}
}

// OpenJar ensures an archive handle is open for the given jar and returns
// it. Opening a corrupted or missing archive returns an ArchiveError; the
// caller treats that root as yielding nothing.
func (cp *Classpath) OpenJar(jarPath string) (*zip.ReadCloser, error) {
	key := normalizeRoot(jarPath)

	cp.mu.RLock()
	rc, ok := cp.jars[key]
	cp.mu.RUnlock()
	if ok {
		return rc, nil
	}

	opened, err := zip.OpenReader(key)
	if err != nil {
		return nil, lsierrors.NewArchiveError("open", key, err)
	}

	cp.mu.Lock()
	defer cp.mu.Unlock()
	// Another goroutine may have raced us here; keep the first handle.
	if rc, ok := cp.jars[key]; ok {
		opened.Close()
		return rc, nil
	}
	cp.jars[key] = opened
	return opened, nil
}

// JarEntries returns the file entry names of an archive, opening it on
// demand. A traversal failure yields an error and no entries.
func (cp *Classpath) JarEntries(jarPath string) ([]string, error) {
	rc, err := cp.OpenJar(jarPath)
	if err != nil {
		return nil, err
	}
	entries := make([]string, 0, len(rc.File))
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, f.Name)
	}
	return entries, nil
}

// ResolveAll resolves a relative source path against every registered
// root, returning each existing match as an absolute path or a jar-entry
// path. The relative path always uses forward slashes.
func (cp *Classpath) ResolveAll(relPath string) []string {
	relPath = strings.TrimPrefix(filepath.ToSlash(relPath), "/")

	var matches []string
	for _, root := range cp.Roots() {
		if IsJarRoot(root) {
			rc, err := cp.OpenJar(root)
			if err != nil {
				continue
			}
			if info, err := fs.Stat(rc, relPath); err == nil && !info.IsDir() {
				matches = append(matches, pathutil.JoinJar(root, relPath))
			}
			continue
		}
		candidate := filepath.Join(root, filepath.FromSlash(relPath))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			matches = append(matches, candidate)
		}
	}
	return matches
}

// ReadFile reads a filesystem path or a jar-entry path.
func (cp *Classpath) ReadFile(path string) ([]byte, error) {
	jarPath, entry := pathutil.SplitJar(path)
	if entry == "" {
		return os.ReadFile(path)
	}
	rc, err := cp.OpenJar(jarPath)
	if err != nil {
		return nil, err
	}
	f, err := rc.Open(entry)
	if err != nil {
		return nil, lsierrors.NewArchiveError("read", path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, lsierrors.NewArchiveError("read", path, err)
	}
	return data, nil
}

// Exists performs the live staleness check used by invalidation: a plain
// path exists per os.Stat; a jar-entry path exists when the archive is
// still on disk and still contains the entry.
func (cp *Classpath) Exists(path string) bool {
	jarPath, entry := pathutil.SplitJar(path)
	if entry == "" {
		info, err := os.Stat(path)
		return err == nil && !info.IsDir()
	}
	if _, err := os.Stat(jarPath); err != nil {
		return false
	}
	rc, err := cp.OpenJar(jarPath)
	if err != nil {
		return false
	}
	info, err := fs.Stat(rc, entry)
	return err == nil && !info.IsDir()
}

// Close releases every open archive handle. The classpath remains usable
// for directory roots; jar handles reopen on demand.
func (cp *Classpath) Close() error {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	var firstErr error
	for path, rc := range cp.jars {
		if err := rc.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %s: %w", path, err)
		}
		delete(cp.jars, path)
	}
	return firstErr
}

func normalizeRoot(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(abs)
}
