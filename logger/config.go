package logger

import (
	"fmt"
	"time"

	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/handler"
)

// Config is the configuration surface consumed by a LoggingContext.
// Loading it from the environment or from files belongs to the caller;
// this package only validates and applies it.
type Config struct {
	// Identity triple, attached to every entry. ServiceName is required.
	ServiceName string
	Environment string // default "development"
	Version     string // default "0.0.0"

	// Level is the minimum severity that passes the filter.
	Level core.Level

	// Console output
	ConsoleEnabled bool
	ConsoleFormat  string // "json" (default) or "text"
	ConsoleColors  bool   // ANSI colors, text format only

	// File output
	FileEnabled    bool
	FilePath       string // default "logs/app.log"
	MaxFileSize    int64  // bytes before rotation; <= 0 disables rotation
	MaxBackupCount int

	// Async delivery for the file handler
	AsyncEnabled   bool
	QueueCapacity  int
	OverflowPolicy handler.OverflowPolicy
	BatchSize      int
	BatchTimeout   time.Duration

	// FlushTimeout bounds every flush/sync wait in the pipeline.
	FlushTimeout time.Duration

	// ExtraHandlers are appended to the built-in console and file
	// handlers. The context takes ownership and closes them on Shutdown.
	ExtraHandlers []handler.Handler

	// DefaultContext is included in all entries, below logger and
	// call-site fields in precedence.
	DefaultContext core.Context
}

// DefaultConfig returns a configuration with the standard defaults:
// JSON console output, an async rotating file at logs/app.log with a
// 100 MiB threshold and five backups.
func DefaultConfig(serviceName string) Config {
	return Config{
		ServiceName:    serviceName,
		Environment:    "development",
		Version:        "0.0.0",
		Level:          core.InfoLevel,
		ConsoleEnabled: true,
		ConsoleFormat:  "json",
		ConsoleColors:  true,
		FileEnabled:    true,
		FilePath:       "logs/app.log",
		MaxFileSize:    100 * 1024 * 1024,
		MaxBackupCount: 5,
		AsyncEnabled:   true,
		QueueCapacity:  10000,
		BatchSize:      100,
		BatchTimeout:   100 * time.Millisecond,
		FlushTimeout:   10 * time.Second,
	}
}

// Validate checks required fields and normalizes the rest. Configuration
// errors fail fast here, before any handler is constructed.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("config: service name is required")
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Version == "" {
		c.Version = "0.0.0"
	}
	switch c.ConsoleFormat {
	case "":
		c.ConsoleFormat = "json"
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown console format %q", c.ConsoleFormat)
	}
	if c.FileEnabled && c.FilePath == "" {
		return fmt.Errorf("config: file output enabled without a file path")
	}
	if c.MaxBackupCount < 0 {
		return fmt.Errorf("config: negative backup count")
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("config: negative queue capacity")
	}
	if c.FlushTimeout <= 0 {
		c.FlushTimeout = 10 * time.Second
	}
	return nil
}
