// Package formatter defines how log entries are serialized into bytes.
//
// A Formatter is a pure function over an Entry: one entry maps to exactly
// one newline-terminated record, which makes the resulting files
// line-splittable and append-safe.
//
// Two interfaces are exposed: Formatter, which returns a []byte, and
// BufferFormatter, which formats into a caller-provided bytes.Buffer.
// Handlers check for BufferFormatter at construction time and prefer it
// when available, eliminating the intermediate byte slice allocation on
// the write path.
//
// Both built-in formatters (JSONFormatter and TextFormatter) implement
// both interfaces. They use a pooled bytes.Buffer internally and rely on
// Go's Append-style functions (time.AppendFormat, strconv.AppendInt) to
// avoid per-call allocations.
//
// Buffers larger than 64 KiB are not returned to the pool to prevent a
// single large log line from permanently inflating memory usage.
package formatter
