package logger

import (
	"time"

	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/handler"
)

// now is swapped out in tests for deterministic timestamps.
var now = time.Now

// Logger emits leveled, context-carrying entries to its handler set.
//
// A Logger is immutable: the name, configuration, context, and handler
// slice are set at creation and never modified, which makes every method
// safe for concurrent use without locking. WithContext derives children;
// it never mutates the receiver.
type Logger struct {
	name     string
	cfg      *Config // shared, read-only
	context  core.Context
	handlers []handler.Handler // shared with the owning LoggingContext
}

func newLogger(name string, cfg *Config, context core.Context, handlers []handler.Handler) *Logger {
	return &Logger{
		name:     name,
		cfg:      cfg,
		context:  context,
		handlers: handlers,
	}
}

// Name returns the logger's hierarchical dotted name.
func (l *Logger) Name() string {
	return l.name
}

// Context returns a copy of the logger's own context layer.
func (l *Logger) Context() core.Context {
	return l.context.Clone()
}

// WithContext returns a child logger sharing the receiver's handlers and
// configuration, with the given fields merged over a deep copy of the
// receiver's context (later write wins per key). Mutating the child is
// never observable from the parent or from siblings.
func (l *Logger) WithContext(fields ...core.Field) *Logger {
	return newLogger(l.name, l.cfg, l.context.Merge(fields...), l.handlers)
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string, fields ...core.Field) {
	if core.DebugLevel < l.cfg.Level {
		return
	}
	l.log(core.DebugLevel, msg, fields, nil, 0, false)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string, fields ...core.Field) {
	if core.InfoLevel < l.cfg.Level {
		return
	}
	l.log(core.InfoLevel, msg, fields, nil, 0, false)
}

// Warning logs a message at warning level.
func (l *Logger) Warning(msg string, fields ...core.Field) {
	if core.WarningLevel < l.cfg.Level {
		return
	}
	l.log(core.WarningLevel, msg, fields, nil, 0, false)
}

// Error logs a message at error level.
func (l *Logger) Error(msg string, fields ...core.Field) {
	if core.ErrorLevel < l.cfg.Level {
		return
	}
	l.log(core.ErrorLevel, msg, fields, nil, 0, false)
}

// Critical logs a message at critical level.
func (l *Logger) Critical(msg string, fields ...core.Field) {
	if core.CriticalLevel < l.cfg.Level {
		return
	}
	l.log(core.CriticalLevel, msg, fields, nil, 0, false)
}

// Exception logs a message at error level with the error's type, message,
// and stack attached.
func (l *Logger) Exception(msg string, err error, fields ...core.Field) {
	if core.ErrorLevel < l.cfg.Level {
		return
	}
	l.log(core.ErrorLevel, msg, fields, core.NewExceptionInfo(err), 0, false)
}

// CriticalException logs a message at critical level with the error's
// type, message, and stack attached.
func (l *Logger) CriticalException(msg string, err error, fields ...core.Field) {
	if core.CriticalLevel < l.cfg.Level {
		return
	}
	l.log(core.CriticalLevel, msg, fields, core.NewExceptionInfo(err), 0, false)
}

// Log logs a message at an arbitrary level.
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) {
	if level < l.cfg.Level {
		return
	}
	l.log(level, msg, fields, nil, 0, false)
}

// log builds the entry and fans it out. Callers have already passed the
// level filter, so everything below here may allocate.
//
// Must stay exactly one frame below the exported methods: caller capture
// assumes user code → exported method → log.
func (l *Logger) log(level core.Level, msg string, fields []core.Field, ex *core.ExceptionInfo, durationMS float64, hasDuration bool) {
	caller := core.Caller(3)

	// Merge order: default → logger → call-site, later write wins.
	merged := l.cfg.DefaultContext.MergeContext(l.context)
	for _, f := range fields {
		merged.Set(f)
	}

	entry := &core.Entry{
		Time:        now(),
		Level:       level,
		Message:     msg,
		Service:     l.cfg.ServiceName,
		Environment: l.cfg.Environment,
		Version:     l.cfg.Version,
		LoggerName:  l.name,
		File:        caller.File,
		Line:        caller.Line,
		Function:    caller.Function,
		Context:     merged,
		DurationMS:  durationMS,
		HasDuration: hasDuration,
		Exception:   ex,
	}

	for _, h := range l.handlers {
		emitGuarded(h, entry)
	}
}

// emitGuarded dispatches to one handler; a handler that errors or panics
// is skipped so it can neither block delivery to the remaining handlers
// nor propagate into application code.
func emitGuarded(h handler.Handler, entry *core.Entry) {
	defer func() {
		_ = recover()
	}()
	h.Emit(entry)
}
