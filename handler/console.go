package handler

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/formatter"
)

// ANSI color codes applied around text-format lines when colors are on.
var levelColors = [...]string{
	core.DebugLevel:    "\033[36m", // cyan
	core.InfoLevel:     "\033[32m", // green
	core.WarningLevel:  "\033[33m", // yellow
	core.ErrorLevel:    "\033[31m", // red
	core.CriticalLevel: "\033[35m", // magenta
}

const colorReset = "\033[0m"

var newline = []byte("\n")

// ConsoleConfig holds configuration for the console handler.
type ConsoleConfig struct {
	// Formatter to use (default: JSONFormatter)
	Formatter formatter.Formatter
	// Stdout receives entries below ErrorLevel (default: os.Stdout)
	Stdout io.Writer
	// Stderr receives entries at ErrorLevel and above (default: os.Stderr)
	Stderr io.Writer
	// Colors wraps each line in ANSI color codes. Only sensible with the
	// text formatter.
	Colors bool
}

// ConsoleHandler writes log entries synchronously to the process streams.
// Entries at ErrorLevel and above go to the error stream, everything else
// to standard output. Write failures (e.g. a broken pipe) are swallowed:
// logging must never crash the application.
type ConsoleHandler struct {
	formatter formatter.Formatter
	stdout    io.Writer
	stderr    io.Writer
	colors    bool

	mu     sync.Mutex
	closed bool
}

// NewConsoleHandler creates a new console handler.
func NewConsoleHandler(cfg ConsoleConfig) *ConsoleHandler {
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewJSONFormatter()
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	return &ConsoleHandler{
		formatter: cfg.Formatter,
		stdout:    cfg.Stdout,
		stderr:    cfg.Stderr,
		colors:    cfg.Colors,
	}
}

// Emit writes one entry to the stream chosen by its level.
func (h *ConsoleHandler) Emit(entry *core.Entry) error {
	data, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	if h.colors && entry.Level >= 0 && int(entry.Level) < len(levelColors) && levelColors[entry.Level] != "" {
		line := data
		// Color codes go inside the line terminator, not after it.
		if bytes.HasSuffix(data, newline) {
			line = data[:len(data)-1]
		}
		var buf bytes.Buffer
		buf.Grow(len(data) + 16)
		buf.WriteString(levelColors[entry.Level])
		buf.Write(line)
		buf.WriteString(colorReset)
		buf.WriteByte('\n')
		data = buf.Bytes()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	w := h.stdout
	if entry.Level >= core.ErrorLevel {
		w = h.stderr
	}
	w.Write(data) // write failures are swallowed

	return nil
}

// Flush flushes the underlying streams when they support it. Failures are
// swallowed.
func (h *ConsoleHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	flushWriter(h.stdout)
	flushWriter(h.stderr)
	return nil
}

// Close marks the handler closed. Idempotent; the process streams are not
// closed.
func (h *ConsoleHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	flushWriter(h.stdout)
	flushWriter(h.stderr)
	return nil
}

func flushWriter(w io.Writer) {
	switch fw := w.(type) {
	case interface{ Sync() error }:
		fw.Sync()
	case interface{ Flush() error }:
		fw.Flush()
	}
}
