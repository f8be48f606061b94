package handler

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/agora-platform/agoralog/core"
)

// Handler defines the sink capability for log entries.
type Handler interface {
	// Emit delivers one entry to the sink. Implementations absorb their
	// own I/O failures; a returned error signals the entry was not
	// accepted and the caller may skip this handler, never panic.
	Emit(entry *core.Entry) error

	// Flush blocks until all entries accepted so far are durable in the
	// sink, or a bounded timeout elapses.
	Flush() error

	// Close releases resources. Idempotent: closing twice is a no-op.
	Close() error
}

// diagnostics is the fallback channel for handler-internal failures.
// Overridable in tests.
var diagnostics io.Writer = os.Stderr

// errReporter writes at most one diagnostic line per failure episode.
// A successful operation resets the episode so the next distinct failure
// is reported again, while a persistent failure stays quiet after the
// first line.
type errReporter struct {
	mu       sync.Mutex
	reported bool
}

func (r *errReporter) report(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reported {
		return
	}
	r.reported = true
	fmt.Fprintf(diagnostics, "agoralog: "+format+"\n", args...)
}

func (r *errReporter) reset() {
	r.mu.Lock()
	r.reported = false
	r.mu.Unlock()
}
