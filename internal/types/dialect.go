package types

import (
	"path/filepath"
	"strings"
)

// Dialect selects how a source file is scanned. The index supports two
// dialects: Scala (the indexing dialect, including its scripting flavor)
// and Java (the secondary dialect).
type Dialect int

const (
	DialectUnknown Dialect = iota
	DialectScala
	DialectJava
)

// String returns the lower-case dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectScala:
		return "scala"
	case DialectJava:
		return "java"
	default:
		return "unknown"
	}
}

// Extensions returns the file extensions scanned for the dialect. The
// first extension is the canonical one used for path guessing.
func (d Dialect) Extensions() []string {
	switch d {
	case DialectScala:
		return []string{".scala", ".sc", ".sbt"}
	case DialectJava:
		return []string{".java"}
	default:
		return nil
	}
}

// SourceExtensions lists the extensions used for trivial-path guesses
// across all dialects, most likely first.
func SourceExtensions() []string {
	return []string{".scala", ".java"}
}

// DialectForPath infers the dialect from a file path's extension.
// Unrecognized extensions map to DialectUnknown and are skipped.
func DialectForPath(path string) Dialect {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".scala", ".sc", ".sbt":
		return DialectScala
	case ".java":
		return DialectJava
	default:
		return DialectUnknown
	}
}

// IsScriptPath reports whether the path carries a scripting-flavor
// extension. Script files do not follow the file-name convention, so all
// of their top-level symbols are indexed eagerly.
func IsScriptPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sc", ".sbt":
		return true
	default:
		return false
	}
}

// IsSourcePath reports whether any dialect recognizes the path.
func IsSourcePath(path string) bool {
	return DialectForPath(path) != DialectUnknown
}
