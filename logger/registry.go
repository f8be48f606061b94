package logger

import (
	"fmt"
	"sync"

	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/formatter"
	"github.com/agora-platform/agoralog/handler"
)

// LoggingContext owns a handler pipeline and a registry of named loggers
// sharing it. Construct one per process (or per test), hand loggers out
// with GetLogger, and call Shutdown before exit so queued entries reach
// disk.
type LoggingContext struct {
	cfg      Config
	handlers []handler.Handler

	mu      sync.RWMutex
	loggers map[string]*Logger
	closed  bool
}

// NewContext validates the configuration, builds the handler pipeline,
// and returns a ready LoggingContext. Configuration and handler
// construction errors (an unwritable log file, an unknown format) are
// returned here rather than surfacing later on the logging path.
func NewContext(cfg Config) (*LoggingContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	handlers, err := buildHandlers(&cfg)
	if err != nil {
		return nil, err
	}

	return &LoggingContext{
		cfg:      cfg,
		handlers: handlers,
		loggers:  make(map[string]*Logger),
	}, nil
}

func buildHandlers(cfg *Config) ([]handler.Handler, error) {
	var handlers []handler.Handler

	if cfg.ConsoleEnabled {
		var f formatter.Formatter
		colors := false
		switch cfg.ConsoleFormat {
		case "text":
			f = formatter.NewTextFormatter()
			colors = cfg.ConsoleColors
		default:
			f = formatter.NewJSONFormatter()
		}
		handlers = append(handlers, handler.NewConsoleHandler(handler.ConsoleConfig{
			Formatter: f,
			Colors:    colors,
		}))
	}

	if cfg.FileEnabled {
		fh, err := handler.NewRotatingFileHandler(handler.RotatingConfig{
			Path:        cfg.FilePath,
			MaxSize:     cfg.MaxFileSize,
			MaxBackups:  cfg.MaxBackupCount,
			Formatter:   formatter.NewJSONFormatter(),
			SyncTimeout: cfg.FlushTimeout,
		})
		if err != nil {
			closeHandlers(handlers)
			return nil, fmt.Errorf("logger: open log file: %w", err)
		}

		if cfg.AsyncEnabled {
			handlers = append(handlers, handler.NewAsyncQueueHandler(fh, handler.AsyncConfig{
				Capacity:     cfg.QueueCapacity,
				Policy:       cfg.OverflowPolicy,
				BatchSize:    cfg.BatchSize,
				BatchTimeout: cfg.BatchTimeout,
				FlushTimeout: cfg.FlushTimeout,
			}))
		} else {
			handlers = append(handlers, fh)
		}
	}

	handlers = append(handlers, cfg.ExtraHandlers...)

	return handlers, nil
}

func closeHandlers(handlers []handler.Handler) {
	for _, h := range handlers {
		h.Close()
	}
}

// GetLogger returns the logger registered under name, creating and
// caching it on first use. Successive calls with the same name return
// the same instance. Loggers derived with WithContext are not cached.
func (c *LoggingContext) GetLogger(name string) *Logger {
	c.mu.RLock()
	l, ok := c.loggers[name]
	c.mu.RUnlock()
	if ok {
		return l
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.loggers[name]; ok {
		return l
	}
	l = newLogger(name, &c.cfg, core.NewContext(), c.handlers)
	c.loggers[name] = l
	return l
}

// Config returns a copy of the configuration the context was built with,
// after validation defaults were applied.
func (c *LoggingContext) Config() Config {
	return c.cfg
}

// Flush pushes buffered entries through every handler and waits, bounded
// by each handler's own flush timeout. The context stays usable.
func (c *LoggingContext) Flush() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}

	var firstErr error
	for _, h := range c.handlers {
		if err := h.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Shutdown drains and closes every handler and clears the logger
// registry. It is idempotent; entries logged after Shutdown are
// discarded by the closed handlers.
func (c *LoggingContext) Shutdown() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.loggers = make(map[string]*Logger)
	handlers := c.handlers
	c.mu.Unlock()

	var firstErr error
	for _, h := range handlers {
		if err := h.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
