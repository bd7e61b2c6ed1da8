package errors

import (
	"fmt"
	"os"
	"time"

	"github.com/standardbeagle/lsi/internal/types"
)

// Error types for the lightning-symbol-index system
type ErrorType string

const (
	// Indexing errors
	ErrorTypeIndexing ErrorType = "indexing"
	ErrorTypeScan     ErrorType = "scan"
	ErrorTypeQuery    ErrorType = "query"

	// Source root errors
	ErrorTypeArchive      ErrorType = "archive"
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// IndexingError represents an error while indexing a single file. A
// recoverable error is retried once before the file is skipped.
type IndexingError struct {
	Type        ErrorType
	FilePath    string
	Dialect     types.Dialect
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewIndexingError creates a new indexing error with context
func NewIndexingError(op string, err error) *IndexingError {
	return &IndexingError{
		Type:        ErrorTypeIndexing,
		Operation:   op,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// WithFile adds file information to the error
func (e *IndexingError) WithFile(path string, dialect types.Dialect) *IndexingError {
	e.FilePath = path
	e.Dialect = dialect
	return e
}

// WithRecoverable marks whether the error can be retried
func (e *IndexingError) WithRecoverable(recoverable bool) *IndexingError {
	e.Recoverable = recoverable
	return e
}

// Error implements the error interface
func (e *IndexingError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *IndexingError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable checks if the error can be retried
func (e *IndexingError) IsRecoverable() bool {
	return e.Recoverable
}

// ArchiveError represents a failure opening or traversing a source
// archive. It is never escalated: the offending root yields zero results.
type ArchiveError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewArchiveError creates a new archive error
func NewArchiveError(op, path string, err error) *ArchiveError {
	return &ArchiveError{
		Type:       ErrorTypeArchive,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ArchiveError) Unwrap() error {
	return e.Underlying
}

// SymbolError represents a malformed symbol identifier. Query entry
// points convert it to an empty result rather than propagate it.
type SymbolError struct {
	Type       ErrorType
	Raw        string
	Underlying error
	Timestamp  time.Time
}

// NewSymbolError creates a new symbol error
func NewSymbolError(raw string, err error) *SymbolError {
	return &SymbolError{
		Type:       ErrorTypeQuery,
		Raw:        raw,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *SymbolError) Error() string {
	return fmt.Sprintf("malformed symbol %q: %v", e.Raw, e.Underlying)
}

// Unwrap returns the underlying error
func (e *SymbolError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if os.IsPermission(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}
