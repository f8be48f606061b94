package handler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agora-platform/agoralog/core"
)

// AsyncConfig holds configuration for the async queue handler.
type AsyncConfig struct {
	// Capacity is the bounded queue size (default: 10000).
	Capacity int
	// Policy resolves a full queue (default: DropNewest).
	Policy OverflowPolicy
	// BatchSize is the number of entries the consumer delivers before
	// flushing the wrapped handler (default: 100).
	BatchSize int
	// BatchTimeout bounds how long a partial batch waits before being
	// delivered (default: 100ms).
	BatchTimeout time.Duration
	// BlockTimeout bounds the wait of the Block policy. Zero means wait
	// indefinitely; production configurations should set a bound.
	BlockTimeout time.Duration
	// DrainTimeout bounds how long Close drains queued entries
	// (default: 5s).
	DrainTimeout time.Duration
	// FlushTimeout bounds how long Flush waits for the consumer to
	// confirm an empty queue (default: 10s).
	FlushTimeout time.Duration
}

func (cfg *AsyncConfig) fillDefaults() {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 10 * time.Second
	}
}

// AsyncQueueHandler decorates any Handler with a bounded FIFO queue and a
// single consumer goroutine. Producers enqueue and return; the consumer
// drains the queue in order, in batches, so the wrapped handler never
// observes two queued emits concurrently.
//
// When entries are dropped by policy, the consumer emits one synthetic
// Warning entry summarizing the count with its next batch and resets the
// counter, so overflow stays observable without a per-drop warning flood.
type AsyncQueueHandler struct {
	wrapped Handler
	cfg     AsyncConfig

	queue    chan *core.Entry
	stop     chan struct{}
	flushReq chan chan struct{}
	wg       sync.WaitGroup

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error

	stats   Stats
	emitErr errReporter
}

// NewAsyncQueueHandler wraps the given handler and starts the consumer.
func NewAsyncQueueHandler(wrapped Handler, cfg AsyncConfig) *AsyncQueueHandler {
	cfg.fillDefaults()
	h := &AsyncQueueHandler{
		wrapped:  wrapped,
		cfg:      cfg,
		queue:    make(chan *core.Entry, cfg.Capacity),
		stop:     make(chan struct{}),
		flushReq: make(chan chan struct{}),
	}
	h.wg.Add(1)
	go h.consume()
	return h
}

// Stats exposes the handler's drop and delivery counters.
func (h *AsyncQueueHandler) Stats() *Stats {
	return &h.stats
}

// Emit enqueues the entry, applying the overflow policy when the queue is
// full. Safe for concurrent use by many producers.
func (h *AsyncQueueHandler) Emit(entry *core.Entry) error {
	if h.closed.Load() {
		return nil
	}

	if h.cfg.Policy == FallbackSync {
		select {
		case h.queue <- entry:
			return nil
		default:
			// Bypass the queue; the entry is delivered, not dropped.
			return h.wrapped.Emit(entry)
		}
	}

	select {
	case h.queue <- entry:
		return nil
	default:
	}

	switch h.cfg.Policy {
	case DropOldest:
		select {
		case <-h.queue:
			h.stats.addDropped()
		default:
		}
		select {
		case h.queue <- entry:
		default:
			// Still full; another producer won the race.
			h.stats.addDropped()
		}
		return nil

	case Block:
		if h.cfg.BlockTimeout <= 0 {
			select {
			case h.queue <- entry:
				return nil
			case <-h.stop:
				return h.wrapped.Emit(entry)
			}
		}
		select {
		case h.queue <- entry:
			return nil
		case <-time.After(h.cfg.BlockTimeout):
			// Bounded wait expired; deliver synchronously rather than
			// lose the entry.
			return h.wrapped.Emit(entry)
		case <-h.stop:
			return h.wrapped.Emit(entry)
		}

	default: // DropNewest
		h.stats.addDropped()
		return nil
	}
}

// consume is the single background worker: it accumulates batches and
// delivers them to the wrapped handler in FIFO order.
func (h *AsyncQueueHandler) consume() {
	defer h.wg.Done()

	batch := make([]*core.Entry, 0, h.cfg.BatchSize)
	idle := time.NewTimer(h.cfg.BatchTimeout)
	defer idle.Stop()

	for {
		select {
		case entry := <-h.queue:
			batch = append(batch, entry)
			if len(batch) >= h.cfg.BatchSize {
				batch = h.deliver(batch)
			}

		case <-idle.C:
			if len(batch) > 0 || h.stats.unreported.Load() > 0 {
				batch = h.deliver(batch)
			}
			idle.Reset(h.cfg.BatchTimeout)

		case confirm := <-h.flushReq:
			batch = h.drainQueued(batch)
			batch = h.deliver(batch)
			h.wrapped.Flush()
			close(confirm)

		case <-h.stop:
			deadline := time.After(h.cfg.DrainTimeout)
		drain:
			for {
				select {
				case entry := <-h.queue:
					batch = append(batch, entry)
					if len(batch) >= h.cfg.BatchSize {
						batch = h.deliver(batch)
					}
				case <-deadline:
					break drain
				default:
					break drain
				}
			}
			h.deliver(batch)
			return
		}
	}
}

// drainQueued moves everything currently buffered into the batch without
// blocking, delivering intermediate batches as they fill.
func (h *AsyncQueueHandler) drainQueued(batch []*core.Entry) []*core.Entry {
	for {
		select {
		case entry := <-h.queue:
			batch = append(batch, entry)
			if len(batch) >= h.cfg.BatchSize {
				batch = h.deliver(batch)
			}
		default:
			return batch
		}
	}
}

// deliver emits one batch in order, reports accumulated drops as a
// single synthetic entry, and flushes the wrapped handler once if
// anything was written. Returns the batch re-sliced to zero for reuse.
func (h *AsyncQueueHandler) deliver(batch []*core.Entry) []*core.Entry {
	for _, entry := range batch {
		if err := h.wrapped.Emit(entry); err != nil {
			h.emitErr.report("async delivery failed: %v", err)
		} else {
			h.emitErr.reset()
		}
	}

	wrote := len(batch) > 0
	if n := h.stats.takeDropped(); n > 0 {
		h.wrapped.Emit(h.dropSummary(n))
		wrote = true
	}
	if wrote {
		h.wrapped.Flush()
	}
	if len(batch) > 0 {
		h.stats.addProcessed(len(batch))
	}

	return batch[:0]
}

// dropSummary builds the synthetic overflow warning. The consumer
// goroutine has no meaningful application call site, so the entry carries
// the handler's own provenance.
func (h *AsyncQueueHandler) dropSummary(n uint64) *core.Entry {
	caller := core.Caller(2)
	return &core.Entry{
		Time:       time.Now().UTC(),
		Level:      core.WarningLevel,
		Message:    fmt.Sprintf("dropped %d log entries due to queue overflow", n),
		LoggerName: "agoralog.async",
		File:       caller.File,
		Line:       caller.Line,
		Function:   caller.Function,
		Context:    core.NewContext(core.Int64("dropped_entries", int64(n))),
	}
}

// Flush blocks until the consumer has observed an empty queue and flushed
// the wrapped handler, or FlushTimeout elapses.
func (h *AsyncQueueHandler) Flush() error {
	if h.closed.Load() {
		return h.wrapped.Flush()
	}

	confirm := make(chan struct{})
	select {
	case h.flushReq <- confirm:
	case <-h.stop:
		return h.wrapped.Flush()
	case <-time.After(h.cfg.FlushTimeout):
		return fmt.Errorf("flush request not accepted within %v", h.cfg.FlushTimeout)
	}

	select {
	case <-confirm:
		return nil
	case <-time.After(h.cfg.FlushTimeout):
		return fmt.Errorf("flush confirmation not received within %v", h.cfg.FlushTimeout)
	}
}

// Close stops intake, drains entries already queued (bounded by
// DrainTimeout), then flushes and closes the wrapped handler. Idempotent.
func (h *AsyncQueueHandler) Close() error {
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		close(h.stop)
		h.wg.Wait()

		flushErr := h.wrapped.Flush()
		closeErr := h.wrapped.Close()
		if flushErr != nil {
			h.closeErr = flushErr
		} else {
			h.closeErr = closeErr
		}
	})
	return h.closeErr
}
