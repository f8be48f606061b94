package handler

import "sync/atomic"

// OverflowPolicy defines how AsyncQueueHandler resolves a full queue.
type OverflowPolicy int

const (
	// DropNewest discards the incoming entry (default).
	DropNewest OverflowPolicy = iota
	// DropOldest pops the head of the queue to make room for the
	// incoming entry.
	DropOldest
	// Block waits for room, bounded by BlockTimeout; on timeout the
	// entry is written synchronously to the wrapped handler.
	Block
	// FallbackSync bypasses the queue and writes synchronously to the
	// wrapped handler on the caller's goroutine.
	FallbackSync
)

// String returns the string representation of the policy.
func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	case Block:
		return "Block"
	case FallbackSync:
		return "FallbackSync"
	default:
		return "Unknown"
	}
}

// Stats tracks async handler counters. Overflow is never an error; it is
// resolved by policy and exposed here.
type Stats struct {
	dropped    atomic.Uint64
	unreported atomic.Uint64
	processed  atomic.Uint64
}

// Dropped returns the total number of entries dropped due to queue
// overflow over the handler's lifetime.
func (s *Stats) Dropped() uint64 {
	return s.dropped.Load()
}

// Processed returns the total number of entries delivered to the wrapped
// handler.
func (s *Stats) Processed() uint64 {
	return s.processed.Load()
}

func (s *Stats) addDropped() {
	s.dropped.Add(1)
	s.unreported.Add(1)
}

// takeDropped returns the drop count accumulated since the last consumer
// report and resets it. The lifetime total is unaffected.
func (s *Stats) takeDropped() uint64 {
	return s.unreported.Swap(0)
}

func (s *Stats) addProcessed(n int) {
	s.processed.Add(uint64(n))
}
