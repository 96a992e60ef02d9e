// Package logger provides leveled logging for the Cartographer CLI.
// Warnings and errors are always written; debug and info messages only
// when verbose mode is enabled via the --verbose flag. Output goes to
// stderr so it never mixes with command results on stdout.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	output  io.Writer = os.Stderr
	level             = newLevel()
	slogger           = slog.New(slog.NewTextHandler(writer{}, &slog.HandlerOptions{Level: level}))
)

func newLevel() *slog.LevelVar {
	l := new(slog.LevelVar)
	l.Set(slog.LevelWarn)
	return l
}

// writer forwards to the current output so SetOutput also redirects Slog.
type writer struct{}

func (writer) Write(p []byte) (int, error) {
	mu.RLock()
	defer mu.RUnlock()
	return output.Write(p)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	if v {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelWarn)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	return level.Level() <= slog.LevelDebug
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Slog returns a structured logger sharing the level and output of the
// printf-style functions.
func Slog() *slog.Logger {
	return slogger
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(slog.LevelDebug, "DEBUG", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	if !IsVerbose() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(slog.LevelInfo, "INFO", format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	logf(slog.LevelWarn, "WARN", format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	logf(slog.LevelError, "ERROR", format, args...)
}

func logf(lvl slog.Level, tag, format string, args ...any) {
	if lvl < level.Level() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "["+tag+"] "+format+"\n", args...)
}
