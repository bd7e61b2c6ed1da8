package types

import "fmt"

// Range is a half-open source range with zero-based lines and columns.
type Range struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

// String formats the range as start:col-end:col for diagnostics.
func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.StartLine, r.StartColumn, r.EndLine, r.EndColumn)
}

// SourceLocation is one place a symbol is defined: an absolute file path
// (optionally a jar-entry path in "<jar>!/<entry>" form) and an optional
// range. A symbol may have several locations, e.g. partial definitions
// split across files.
type SourceLocation struct {
	Path  string `json:"path"`
	Range *Range `json:"range,omitempty"`
}

// SameAs reports whether two locations are duplicates. Locations with the
// same path only collide when their ranges also match.
func (l SourceLocation) SameAs(other SourceLocation) bool {
	if l.Path != other.Path {
		return false
	}
	if l.Range == nil || other.Range == nil {
		return l.Range == other.Range
	}
	return *l.Range == *other.Range
}
