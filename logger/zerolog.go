package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// ZerologLogger is a Logger backed by rs/zerolog.
type ZerologLogger struct {
	mu     sync.Mutex
	logger zerolog.Logger
	level  Level
}

// NewZerolog creates a zerolog-backed Logger writing to w.
// If w is nil, it writes to stdout.
func NewZerolog(w io.Writer, level Level) Logger {
	if w == nil {
		w = os.Stdout
	}

	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()

	return &ZerologLogger{logger: zl, level: level}
}

func (l *ZerologLogger) Debug(msg string, keysAndValues ...any) {
	l.emit(l.logger.Debug(), msg, keysAndValues)
}

func (l *ZerologLogger) Info(msg string, keysAndValues ...any) {
	l.emit(l.logger.Info(), msg, keysAndValues)
}

func (l *ZerologLogger) Warn(msg string, keysAndValues ...any) {
	l.emit(l.logger.Warn(), msg, keysAndValues)
}

func (l *ZerologLogger) Error(msg string, keysAndValues ...any) {
	l.emit(l.logger.Error(), msg, keysAndValues)
}

func (l *ZerologLogger) Fatal(msg string, keysAndValues ...any) {
	l.emit(l.logger.Fatal(), msg, keysAndValues)
}

func (l *ZerologLogger) With(keyValues ...any) Logger {
	ctx := l.logger.With()
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, keyValues[i+1])
	}

	return &ZerologLogger{logger: ctx.Logger(), level: l.level}
}

func (l *ZerologLogger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.level
}

func (l *ZerologLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = level
	l.logger = l.logger.Level(toZerologLevel(level))
}

// emit attaches the key-value pairs to the event and sends it.
// Odd trailing keys are ignored, matching zerolog's Fields behavior.
func (l *ZerologLogger) emit(ev *zerolog.Event, msg string, keysAndValues []any) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, keysAndValues[i+1])
	}
	ev.Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case FatalLevel:
		return zerolog.FatalLevel
	default:
		return zerolog.ErrorLevel
	}
}
