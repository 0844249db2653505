package apiclient

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Logger receives debug output from the client. Messages carry alternating
// key/value pairs, zerolog-style.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type zerologLogger struct {
	zl zerolog.Logger
}

// NewSimpleLogger returns a console logger writing human-readable output to
// stderr, suitable for development use with WithSimpleLogger.
func NewSimpleLogger() Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return &zerologLogger{zl: zerolog.New(writer).With().Timestamp().Logger()}
}

// NewZerologLogger adapts an existing zerolog.Logger to the Logger
// interface so the client logs through the application's sink.
func NewZerologLogger(zl zerolog.Logger) Logger {
	return &zerologLogger{zl: zl}
}

func (l *zerologLogger) Debug(msg string, keysAndValues ...any) {
	l.emit(l.zl.Debug(), msg, keysAndValues)
}

func (l *zerologLogger) Info(msg string, keysAndValues ...any) {
	l.emit(l.zl.Info(), msg, keysAndValues)
}

func (l *zerologLogger) Warn(msg string, keysAndValues ...any) {
	l.emit(l.zl.Warn(), msg, keysAndValues)
}

func (l *zerologLogger) Error(msg string, keysAndValues ...any) {
	l.emit(l.zl.Error(), msg, keysAndValues)
}

func (l *zerologLogger) emit(event *zerolog.Event, msg string, keysAndValues []any) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		event = event.Interface(key, keysAndValues[i+1])
	}
	event.Msg(msg)
}
