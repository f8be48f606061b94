package core

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Entry represents a single structured log record with all its metadata.
// Entries are created once by the logger and never mutated afterwards.
type Entry struct {
	Time        time.Time
	Level       Level
	Message     string
	Service     string
	Environment string
	Version     string
	LoggerName  string

	// Source location. Always present on the wire; supplied by Caller or
	// an equivalent collaborator and treated as opaque from here on.
	File     string
	Line     int
	Function string

	Context Context

	// DurationMS is the operation duration in milliseconds, valid only
	// when HasDuration is set. Attached by Timer.
	DurationMS  float64
	HasDuration bool

	Exception *ExceptionInfo
}

// ExceptionInfo carries error details attached to an entry.
type ExceptionInfo struct {
	Type    string
	Message string
	Stack   string
}

// NewExceptionInfo builds exception details from an error, capturing the
// current goroutine's stack text. Returns nil for a nil error.
func NewExceptionInfo(err error) *ExceptionInfo {
	if err == nil {
		return nil
	}
	return &ExceptionInfo{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Stack:   string(debug.Stack()),
	}
}
