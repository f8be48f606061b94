package logger

import (
	"sync"
	"time"

	"github.com/agora-platform/agoralog/core"
)

type timerState int

const (
	timerActive timerState = iota
	timerCancelled
	timerDone
)

// Timer measures the duration of one operation and logs it on Stop.
//
// A Timer is in exactly one of three states: active, cancelled, or done.
// Stop logs once and only from the active state; Cancel suppresses the
// log and is a no-op once the timer has reached a terminal state. Both
// are safe to call concurrently and to call more than once.
type Timer struct {
	logger    *Logger
	operation string
	fields    []core.Field
	start     time.Time

	mu    sync.Mutex
	state timerState
}

// Timer starts timing an operation. The returned timer logs an info
// entry carrying the elapsed duration when Stop is called:
//
//	t := log.Timer("db.query", core.String("table", "users"))
//	defer t.Stop()
func (l *Logger) Timer(operation string, fields ...core.Field) *Timer {
	return &Timer{
		logger:    l,
		operation: operation,
		fields:    fields,
		start:     now(),
	}
}

// Elapsed returns the time since the timer started. It does not change
// the timer's state.
func (t *Timer) Elapsed() time.Duration {
	return now().Sub(t.start)
}

// Stop ends the measurement and logs an info entry with the operation as
// the message and the elapsed time in milliseconds as its duration. Only
// the first Stop on an active timer logs; later calls and calls after
// Cancel do nothing.
func (t *Timer) Stop() {
	t.mu.Lock()
	if t.state != timerActive {
		t.mu.Unlock()
		return
	}
	t.state = timerDone
	elapsed := now().Sub(t.start)
	t.mu.Unlock()

	l := t.logger
	if core.InfoLevel < l.cfg.Level {
		return
	}
	l.log(core.InfoLevel, t.operation, t.fields, nil, float64(elapsed)/float64(time.Millisecond), true)
}

// Cancel discards the measurement so Stop will not log. Cancelling a
// timer that has already stopped or been cancelled has no effect.
func (t *Timer) Cancel() {
	t.mu.Lock()
	if t.state == timerActive {
		t.state = timerCancelled
	}
	t.mu.Unlock()
}
