// Package logger provides leveled stderr logging for the qbank CLI.
// Messages are suppressed unless verbose mode is enabled with the
// --verbose flag; the TUI owns the terminal, so nothing is ever
// written to stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// SetOutput redirects log output. Defaults to os.Stderr; tests point
// it at a buffer.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug logs pipeline detail: fingerprints matched, pages merged,
// decisions resolved.
func Debug(format string, args ...any) {
	write("DEBUG", format, args...)
}

// Info logs notable events: imports, exports, watch startup.
func Info(format string, args ...any) {
	write("INFO", format, args...)
}

// Warn logs recoverable problems: skipped candidates, failed page
// merges, watch errors.
func Warn(format string, args ...any) {
	write("WARN", format, args...)
}

func write(level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
}
