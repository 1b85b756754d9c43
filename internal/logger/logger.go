// Package logger provides verbose stderr logging for the pharmaguard
// CLI. Nothing is printed unless verbose mode is on, so the default
// command output stays clean; with --verbose the retrieval pipeline
// narrates its stages.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var state = struct {
	sync.RWMutex
	verbose bool
	out     io.Writer
}{out: os.Stderr}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	state.Lock()
	state.verbose = v
	state.Unlock()
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	state.RLock()
	defer state.RUnlock()
	return state.verbose
}

// SetOutput redirects verbose logs, which go to os.Stderr by default.
// Tests use this to capture output.
func SetOutput(w io.Writer) {
	state.Lock()
	state.out = w
	state.Unlock()
}

// logf prints one tagged line when verbose mode is on.
func logf(tag, format string, args ...any) {
	state.RLock()
	defer state.RUnlock()
	if !state.verbose {
		return
	}
	fmt.Fprintf(state.out, tag+" "+format+"\n", args...)
}

// Debug prints a debug message in verbose mode.
func Debug(format string, args ...any) {
	logf("[DEBUG]", format, args...)
}

// Info prints an informational message in verbose mode.
func Info(format string, args ...any) {
	logf("[INFO]", format, args...)
}

// Warn prints a warning in verbose mode.
func Warn(format string, args ...any) {
	logf("[WARN]", format, args...)
}

// Section prints a banner marking a pipeline stage in verbose mode.
func Section(name string) {
	state.RLock()
	defer state.RUnlock()
	if !state.verbose {
		return
	}
	fmt.Fprintf(state.out, "\n=== %s ===\n", name)
}
