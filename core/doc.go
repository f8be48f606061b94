// Package core defines the shared types used across the agoralog library.
//
// It provides the Level type for severity filtering, the Entry type that
// represents a single log record, the Field type for structured key-value
// pairs, and the ordered Context collection that carries fields from the
// default, logger, and call-site layers.
//
// An Entry is built once by the logger and never mutated afterwards, so
// handlers may hold on to it (an async queue does) without copying. The
// context value space is deliberately small (string, int64, float64, and
// bool), which keeps every Field a fixed-size value and the serialized
// records predictable.
//
// Caller produces the file/line/function triple attached to every Entry.
// The rest of the library treats those three strings as opaque input; any
// collaborator that can supply them may replace Caller.
package core
