// Package log provides a leveled, structured logger for the whole module.
// It wraps zerolog behind a small package-level API so callers never deal
// with logger instances.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
	LogLevelFatal = "fatal"
)

// logTestWriterName is a reserved output name used by tests and benchmarks
// to plug their own writer via the logTestWriter variable.
const logTestWriterName = "log_test_writer"

var (
	log           zerolog.Logger
	logLevel      string
	logTestWriter io.Writer

	// panicOnInvalidChars controls whether logging non-UTF8 data panics.
	// Enabled via LOG_PANIC_ON_INVALIDCHARS=true, only meant for tests,
	// since the check is expensive.
	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"
)

// invalidCharChecker panics when a log line carries invalid UTF8 characters,
// which usually means some []byte was logged raw instead of hex-encoded.
type invalidCharChecker struct{}

func (invalidCharChecker) Write(p []byte) (int, error) {
	if !utf8.Valid(p) {
		panic(fmt.Sprintf("log line with invalid chars: %q", string(p)))
	}
	return len(p), nil
}

// Init initializes the logger with the given level and output. The output
// can be "stdout", "stderr" or a file path. If errorsFile is not nil, all
// warning and error lines are duplicated to it.
func Init(level, output string, errorsFile io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}
	case "stderr":
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339Nano}
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot open log output %q: %v", output, err))
		}
		out = f
	}
	if errorsFile != nil {
		out = zerolog.MultiLevelWriter(out, errorLevelWriter{errorsFile})
	}
	if panicOnInvalidChars {
		out = zerolog.MultiLevelWriter(out, invalidCharChecker{})
	}
	zl, err := zerolog.ParseLevel(level)
	if err != nil {
		panic(fmt.Sprintf("invalid log level %q: %v", level, err))
	}
	logLevel = level
	log = zerolog.New(out).Level(zl).With().Timestamp().Logger()
	Infof("logger construction succeeded at level %s with output %s", level, output)
}

// errorLevelWriter forwards only warning-and-above lines to its writer.
type errorLevelWriter struct{ w io.Writer }

func (w errorLevelWriter) Write(p []byte) (int, error) { return len(p), nil }

func (w errorLevelWriter) WriteLevel(lvl zerolog.Level, p []byte) (int, error) {
	if lvl < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.w.Write(p)
}

// Level returns the level the logger was initialized with.
func Level() string { return logLevel }

// Logger returns the underlying zerolog logger.
func Logger() *zerolog.Logger { return &log }

// Debug logs a debug message built from its arguments.
func Debug(args ...any) { log.Debug().Msg(fmt.Sprint(args...)) }

// Info logs an info message built from its arguments.
func Info(args ...any) { log.Info().Msg(fmt.Sprint(args...)) }

// Warn logs a warning message built from its arguments.
func Warn(args ...any) { log.Warn().Msg(fmt.Sprint(args...)) }

// Error logs an error message built from its arguments.
func Error(args ...any) { log.Error().Msg(fmt.Sprint(args...)) }

// Fatal logs a message built from its arguments and exits.
func Fatal(args ...any) { log.Fatal().Msg(fmt.Sprint(args...)) }

// Debugf logs a formatted debug message.
func Debugf(template string, args ...any) { log.Debug().Msgf(template, args...) }

// Infof logs a formatted info message.
func Infof(template string, args ...any) { log.Info().Msgf(template, args...) }

// Warnf logs a formatted warning message.
func Warnf(template string, args ...any) { log.Warn().Msgf(template, args...) }

// Errorf logs a formatted error message.
func Errorf(template string, args ...any) { log.Error().Msgf(template, args...) }

// Fatalf logs a formatted message and exits.
func Fatalf(template string, args ...any) { log.Fatal().Msgf(template, args...) }

// Debugw logs a debug message with alternating key-value pairs.
func Debugw(msg string, keyvalues ...any) { withFields(log.Debug(), keyvalues...).Msg(msg) }

// Infow logs an info message with alternating key-value pairs.
func Infow(msg string, keyvalues ...any) { withFields(log.Info(), keyvalues...).Msg(msg) }

// Warnw logs a warning message with alternating key-value pairs.
func Warnw(msg string, keyvalues ...any) { withFields(log.Warn(), keyvalues...).Msg(msg) }

// Errorw logs an error with an extra message and no structured fields.
func Errorw(err error, msg string) {
	if err == nil {
		log.Error().Msg(msg)
		return
	}
	log.Error().Err(err).Msg(msg)
}

func withFields(ev *zerolog.Event, keyvalues ...any) *zerolog.Event {
	if len(keyvalues)%2 != 0 {
		keyvalues = append(keyvalues, "MISSING")
	}
	for i := 0; i < len(keyvalues); i += 2 {
		key, ok := keyvalues[i].(string)
		if !ok {
			key = strings.TrimSpace(fmt.Sprint(keyvalues[i]))
		}
		ev = ev.Interface(key, keyvalues[i+1])
	}
	return ev
}
