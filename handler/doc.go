// Package handler provides the Handler interface and its built-in
// implementations for delivering log entries to sinks.
//
// A Handler is the sink capability: Emit accepts one entry, Flush blocks
// until accepted entries are durable (bounded by a timeout), and Close is
// idempotent. Nothing a handler does propagates a panic back into the
// application; internal I/O failures are absorbed and reported at most
// once per failure episode to stderr, so a dying disk produces one
// diagnostic line instead of a log storm.
//
// Built-in handlers:
//
//   - ConsoleHandler routes entries at Error and above to the error
//     stream and everything else to standard output.
//   - RotatingFileHandler appends to a file and rotates it into numbered
//     backups (<path>.1 newest) once a size threshold would be crossed.
//   - AsyncQueueHandler decorates any Handler with a bounded queue, a
//     configurable overflow policy, and a single batching consumer
//     goroutine, keeping the caller's hot path free of I/O.
//
// Within one handler instance writes are totally ordered under that
// instance's lock; across instances no ordering is guaranteed.
package handler
