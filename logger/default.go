package logger

import (
	"errors"
	"sync"
)

// The package-level default context is optional convenience for
// applications that want one process-wide pipeline. Libraries should take
// a *LoggingContext (or *Logger) explicitly instead of reaching for it.

var (
	defaultMu  sync.RWMutex
	defaultCtx *LoggingContext
)

// ErrNotInitialized is returned when the package default is used before
// Initialize.
var ErrNotInitialized = errors.New("logger: not initialized")

// Initialize builds a LoggingContext from cfg and installs it as the
// package default, replacing (and shutting down) any previous one.
func Initialize(cfg Config) (*LoggingContext, error) {
	ctx, err := NewContext(cfg)
	if err != nil {
		return nil, err
	}

	defaultMu.Lock()
	prev := defaultCtx
	defaultCtx = ctx
	defaultMu.Unlock()

	if prev != nil {
		prev.Shutdown()
	}
	return ctx, nil
}

// Default returns the package default context, or nil before Initialize.
func Default() *LoggingContext {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultCtx
}

// GetLogger returns a named logger from the package default context.
func GetLogger(name string) (*Logger, error) {
	defaultMu.RLock()
	ctx := defaultCtx
	defaultMu.RUnlock()
	if ctx == nil {
		return nil, ErrNotInitialized
	}
	return ctx.GetLogger(name), nil
}

// Flush flushes the package default context, if initialized.
func Flush() error {
	defaultMu.RLock()
	ctx := defaultCtx
	defaultMu.RUnlock()
	if ctx == nil {
		return nil
	}
	return ctx.Flush()
}

// Shutdown shuts down and uninstalls the package default context. Safe
// to call without a prior Initialize.
func Shutdown() error {
	defaultMu.Lock()
	ctx := defaultCtx
	defaultCtx = nil
	defaultMu.Unlock()
	if ctx == nil {
		return nil
	}
	return ctx.Shutdown()
}
