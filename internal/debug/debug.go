package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/lsi/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// debugOutput is the writer for debug output (defaults to nil, meaning no output)
var debugOutput io.Writer

// debugMutex protects access to debug output
var debugMutex sync.Mutex

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// IsDebugEnabled returns true if debug mode is enabled
func IsDebugEnabled() bool {
	// Check build flag first
	if EnableDebug == "true" {
		return true
	}

	// Allow runtime override via environment variable
	if os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true" {
		return true
	}

	return false
}

// getDebugWriter returns the writer for debug output, or nil if none is configured
func getDebugWriter() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Printf prints debug information only when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG] "+format, args...)
}

// Log provides structured debug logging with component names
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
}

// LogIndexing provides debug logging specifically for add-source operations
func LogIndexing(format string, args ...interface{}) {
	Log("INDEX", format, args...)
}

// LogQuery provides debug logging specifically for query and fallback operations
func LogQuery(format string, args ...interface{}) {
	Log("QUERY", format, args...)
}

// LogArchive provides debug logging specifically for classpath and archive handling
func LogArchive(format string, args ...interface{}) {
	Log("ARCHIVE", format, args...)
}
