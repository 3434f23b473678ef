// Package logging is solarcore's thin leveled-logger wrapper, used by
// orchestrator to report initialization, re-seeding and applied scheduled
// events without tying callers to a concrete logging library. It wraps github.com/rs/zerolog rather than
// reimplementing level filtering and formatting from scratch.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level re-exports zerolog's level type so callers never import zerolog
// directly.
type Level = zerolog.Level

const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
)

// Field is a single structured key/value attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

// Body attaches the body id involved in the logged event.
func Body(id string) Field { return Field{"body", id} }

// Instant attaches a seconds-past-J2000 timestamp.
func Instant(t float64) Field { return Field{"instant", t} }

// Err attaches an error's message under the conventional "error" key.
func Err(err error) Field {
	if err == nil {
		return Field{"error", nil}
	}
	return Field{"error", err.Error()}
}

// Logger is a leveled, structured logger. The zero value is not usable;
// construct one with New or Discard.
type Logger struct {
	zl zerolog.Logger
}

// New returns a Logger writing human-readable console output to stderr at
// the given minimum level.
func New(level Level) *Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// Discard returns a Logger that drops every line, for tests and library
// callers that have not configured a sink.
func Discard() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// SetOutput redirects subsequent log lines to w.
func (l *Logger) SetOutput(w io.Writer) {
	l.zl = l.zl.Output(w)
}

// SetLevel changes the minimum level logged.
func (l *Logger) SetLevel(level Level) {
	l.zl = l.zl.Level(level)
}

func (l *Logger) log(ev *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(l.zl.Error(), msg, fields) }
