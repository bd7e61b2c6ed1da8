// Package pathutil provides utilities for converting between absolute and
// relative paths and for addressing entries inside source archives.
//
// Architecture Pattern:
// Lightning Symbol Index uses absolute paths internally for consistency and
// to avoid ambiguity. User-facing output uses relative paths where possible.
// Files inside jar archives are addressed with the "<jar>!/<entry>"
// convention so a single string identifies any indexable file.
package pathutil

import (
	"path/filepath"
	"strings"
)

// JarSeparator splits an archive path from the entry path inside it.
const JarSeparator = "!/"

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/Main.scala", "/home/user/project") → "src/Main.scala"
//   - ToRelative("/other/location/Main.scala", "/home/user/project") → "/other/location/Main.scala" (outside root)
//   - ToRelative("src/Main.scala", "/home/user/project") → "src/Main.scala" (already relative)
func ToRelative(absPath, rootDir string) string {
	// Handle empty inputs
	if absPath == "" || rootDir == "" {
		return absPath
	}

	// Jar-entry paths are already root-independent
	if IsJarPath(absPath) {
		return absPath
	}

	// If path is already relative, return as-is
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	// Clean both paths to normalize separators and remove redundant elements
	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	// Try to make relative
	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// Conversion failed (e.g., different drives on Windows) - return absolute
		return absPath
	}

	// If the relative path starts with ".." the file is outside the root;
	// the absolute path is clearer in that case
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return relPath
}

// IsJarPath reports whether the path addresses an entry inside an archive.
func IsJarPath(path string) bool {
	return strings.Contains(path, JarSeparator)
}

// JoinJar builds a jar-entry path from an archive path and an entry name.
// Entry names always use forward slashes regardless of platform.
func JoinJar(jarPath, entry string) string {
	return jarPath + JarSeparator + strings.TrimPrefix(filepath.ToSlash(entry), "/")
}

// SplitJar splits a jar-entry path into the archive path and the entry
// name. For plain filesystem paths it returns (path, "").
func SplitJar(path string) (jarPath, entry string) {
	idx := strings.Index(path, JarSeparator)
	if idx < 0 {
		return path, ""
	}
	return path[:idx], path[idx+len(JarSeparator):]
}
