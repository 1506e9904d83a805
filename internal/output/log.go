// Package output holds the process-wide logger used by the build, the
// metadata collector and the dev server, plus the plain writer for hints
// printed after scaffolding.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the process-wide logger. Replace it with SetupLogging or
// SetOutput, not directly.
var Logger = newLogger(os.Stderr, false)

var hintWriter io.Writer = os.Stdout

func newLogger(w io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "nibl",
		ReportTimestamp: debug,
		TimeFormat:      "15:04:05",
	})
}

// SetupLogging points the logger at stderr. Debug turns on debug messages
// and timestamps.
func SetupLogging(debug bool) {
	Logger = newLogger(os.Stderr, debug)
}

// SetOutput points the logger and hints at w.
func SetOutput(w io.Writer, debug bool) {
	Logger = newLogger(w, debug)
	hintWriter = w
}

func Debug(msg string, keyvals ...any) { Logger.Debug(msg, keyvals...) }

func Info(msg string, keyvals ...any) { Logger.Info(msg, keyvals...) }

func Warn(msg string, keyvals ...any) { Logger.Warn(msg, keyvals...) }

func Error(msg string, keyvals ...any) { Logger.Error(msg, keyvals...) }

// Hint prints each line as is, without level or prefix.
func Hint(lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(hintWriter, line)
	}
}
