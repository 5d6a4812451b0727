// Package diagnostics holds the fatal-exit and logger helpers shared by the CLI
package diagnostics

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Fatal prints a fatal error message and exits if err is not nil
func Fatal(msg string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Fatal: %s: %v\n", msg, err)
	os.Exit(1)
}

// NewLogger returns a text logger writing to w. Verbose lowers the level to debug.
func NewLogger(verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
