// Package logger provides leveled logging for rfpvault.
//
// Debug, Info and Warn lines are written only in verbose mode (--verbose);
// Error lines are always written. Lines look like
//
//	15:04:05.000 WARN  INGEST   | model unavailable, using regex rules
//
// The module column is empty for the package-level functions and set by
// loggers obtained from For.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	now               = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects log lines, os.Stderr by default.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Logger tags every line with a module name.
type Logger struct {
	module string
}

// For returns a logger for module. Names are upper-cased.
func For(module string) *Logger {
	return &Logger{module: strings.ToUpper(module)}
}

func (l *Logger) Debug(format string, args ...any) { write(LevelDebug, l.module, format, args) }
func (l *Logger) Info(format string, args ...any)  { write(LevelInfo, l.module, format, args) }
func (l *Logger) Warn(format string, args ...any)  { write(LevelWarn, l.module, format, args) }
func (l *Logger) Error(format string, args ...any) { write(LevelError, l.module, format, args) }

// Debug logs in verbose mode.
func Debug(format string, args ...any) { write(LevelDebug, "", format, args) }

// Info logs in verbose mode.
func Info(format string, args ...any) { write(LevelInfo, "", format, args) }

// Warn logs in verbose mode.
func Warn(format string, args ...any) { write(LevelWarn, "", format, args) }

// Error always logs.
func Error(format string, args ...any) { write(LevelError, "", format, args) }

// Section prints a banner in verbose mode.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// write holds the exclusive lock so lines from concurrent goroutines never
// interleave.
func write(level Level, module, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if level < LevelError && !verbose {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if !verbose {
		fmt.Fprintf(output, "[%s] %s\n", level, msg)
		return
	}
	if module == "" {
		module = "-"
	}
	fmt.Fprintf(output, "%s %-5s %-8s | %s\n", now().Format("15:04:05.000"), level, module, msg)
}
