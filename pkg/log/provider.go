package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	sberrors "github.com/YuminosukeSato/stumpboost/pkg/errors"
	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger on top of a zerolog.Logger.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// Debug implements Logger.Debug.
func (z *ZerologLogger) Debug(msg string, fields ...any) {
	emit(z.logger.Debug(), msg, fields)
}

// Info implements Logger.Info.
func (z *ZerologLogger) Info(msg string, fields ...any) {
	emit(z.logger.Info(), msg, fields)
}

// Warn implements Logger.Warn.
func (z *ZerologLogger) Warn(msg string, fields ...any) {
	emit(z.logger.Warn(), msg, fields)
}

// Error implements Logger.Error.
func (z *ZerologLogger) Error(msg string, fields ...any) {
	emit(z.logger.Error(), msg, fields)
}

// With implements Logger.With.
func (z *ZerologLogger) With(fields ...any) Logger {
	return &ZerologLogger{logger: z.logger.With().Fields(normalizeFields(fields)).Logger()}
}

// Enabled implements Logger.Enabled.
func (z *ZerologLogger) Enabled(ctx context.Context, level Level) bool {
	zl := toZerologLevel(level)
	return zl >= z.logger.GetLevel() && zl >= zerolog.GlobalLevel()
}

// emit appends key-value pairs to ev. A nil event (disabled level) is a no-op
// in zerolog, so callers need not check the level first.
func emit(ev *zerolog.Event, msg string, fields []any) {
	if ev == nil {
		return
	}
	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			ev = ev.Interface("!BADKEY", fields[i])
			break
		}
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			if key == ErrAttrKey {
				ev = ev.Stack().Err(v)
			} else if m, ok := v.(zerolog.LogObjectMarshaler); ok {
				ev = ev.Object(key, m)
			} else {
				ev = ev.AnErr(key, v)
			}
		case zerolog.LogObjectMarshaler:
			ev = ev.Object(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

// normalizeFields converts error values to strings so that With-contexts
// render the same way as per-event fields.
func normalizeFields(fields []any) []any {
	out := make([]any, len(fields))
	copy(out, fields)
	for i := 1; i < len(out); i += 2 {
		if err, ok := out[i].(error); ok {
			out[i] = err.Error()
		}
	}
	return out
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ZerologProvider is the default LoggerProvider. All loggers it hands out
// share one writer and one minimum level.
type ZerologProvider struct {
	mu    sync.RWMutex
	out   io.Writer
	level Level
	base  zerolog.Logger
}

// NewZerologProvider creates a provider writing JSON lines to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	p := &ZerologProvider{out: w, level: level}
	p.rebuild()
	return p
}

func (p *ZerologProvider) rebuild() {
	p.base = zerolog.New(p.out).
		Level(toZerologLevel(p.level)).
		With().
		Timestamp().
		Logger()
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &ZerologLogger{logger: p.base}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &ZerologLogger{logger: p.base.With().Str(ComponentKey, name).Logger()}
}

// SetLevel implements LoggerProvider.SetLevel. Loggers obtained earlier keep
// their previous level.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	p.rebuild()
}

// SetOutput redirects subsequently created loggers to w.
func (p *ZerologProvider) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = w
	p.rebuild()
}

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewZerologProvider(os.Stderr, LevelInfo)
)

func init() {
	// pkg/errors cannot import this package, so the warning sink is registered here.
	sberrors.SetZerologWarnFunc(func(w error) {
		GetLoggerWithName("warnings").Warn(w.Error(), "warning", w)
	})
}

// SetProvider replaces the global provider, e.g. with a TestLoggerProvider.
// It returns the previous provider so tests can restore it.
func SetProvider(p LoggerProvider) LoggerProvider {
	providerMu.Lock()
	defer providerMu.Unlock()
	prev := provider
	provider = p
	return prev
}

func currentProvider() LoggerProvider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider
}

// GetLogger returns a logger from the global provider.
func GetLogger() Logger {
	return currentProvider().GetLogger()
}

// GetLoggerWithName returns a component logger from the global provider.
func GetLoggerWithName(name string) Logger {
	return currentProvider().GetLoggerWithName(name)
}

// SetLevel sets the minimum level of the global provider.
func SetLevel(level Level) {
	currentProvider().SetLevel(level)
}
