package handler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/formatter"
)

// RotatingConfig holds configuration for the rotating file handler.
type RotatingConfig struct {
	// Path is the active log file. Backups live at <path>.1 .. <path>.N,
	// with .1 the most recently rotated-out file.
	Path string
	// MaxSize is the size threshold in bytes. A write that would push the
	// file past it triggers rotation first. Zero or negative disables
	// rotation entirely (plain append mode).
	MaxSize int64
	// MaxBackups is the number of numbered backups to keep.
	MaxBackups int
	// Formatter to use (default: JSONFormatter)
	Formatter formatter.Formatter
	// SyncTimeout bounds how long Flush waits for fsync (default: 5s).
	SyncTimeout time.Duration
}

// RotatingFileHandler writes log entries to a file, rotating it into
// numbered backups once MaxSize would be exceeded.
//
// currentSize mirrors the exact byte length written to the open file
// since it was opened; it is resynchronized from the filesystem only when
// a file is (re)opened, never by periodic sampling.
//
// If a rotation fails and the original path cannot be reopened either,
// the handler enters a sticky degraded state: writes keep appending to
// the same file and no further rotation is attempted, which avoids
// repeated failure storms but lets the file grow without bound until the
// process restarts.
type RotatingFileHandler struct {
	path        string
	maxSize     int64
	maxBackups  int
	formatter   formatter.Formatter
	bufFmt      formatter.BufferFormatter
	syncTimeout time.Duration

	mu               sync.Mutex
	file             *os.File
	currentSize      int64
	rotationDisabled bool
	closed           bool
	buf              bytes.Buffer

	rotateErr errReporter
	writeErr  errReporter
	flushWarn sync.Once
}

// NewRotatingFileHandler creates the handler, creating parent directories
// and opening the file in append mode. An existing file's length seeds
// currentSize so a restarted process continues toward the same threshold.
func NewRotatingFileHandler(cfg RotatingConfig) (*RotatingFileHandler, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("log file path is required")
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewJSONFormatter()
	}
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = 5 * time.Second
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	h := &RotatingFileHandler{
		path:        cfg.Path,
		maxSize:     cfg.MaxSize,
		maxBackups:  cfg.MaxBackups,
		formatter:   cfg.Formatter,
		syncTimeout: cfg.SyncTimeout,
	}
	h.bufFmt, _ = cfg.Formatter.(formatter.BufferFormatter)

	if err := h.open(); err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return h, nil
}

// Emit formats and writes one entry, rotating first when the write would
// cross the size threshold. Rotation and write share one critical section
// so no write can land between closing the old file and opening the new.
func (h *RotatingFileHandler) Emit(entry *core.Entry) error {
	var data []byte
	if h.bufFmt == nil {
		var err error
		data, err = h.formatter.Format(entry)
		if err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	if h.bufFmt != nil {
		h.buf.Reset()
		h.bufFmt.FormatEntry(entry, &h.buf)
		data = h.buf.Bytes()
	}
	entrySize := int64(len(data))

	if !h.rotationDisabled && h.maxSize > 0 && h.currentSize+entrySize > h.maxSize {
		h.rotate()
	}

	if h.file == nil {
		// A previous failure left the file closed; try again so logging
		// recovers as soon as the filesystem does.
		if err := h.open(); err != nil {
			h.writeErr.report("cannot open %s: %v", h.path, err)
			return nil
		}
	}

	n, err := h.file.Write(data)
	h.currentSize += int64(n)
	if err != nil {
		h.writeErr.report("write to %s failed: %v", h.path, err)
		return nil
	}
	h.writeErr.reset()
	return nil
}

// rotate shifts backups and opens a fresh file. Called with the lock held.
func (h *RotatingFileHandler) rotate() {
	if err := h.doRotate(); err != nil {
		h.rotateErr.report("rotation of %s failed: %v", h.path, err)
		// Reopen the original path so logging can continue unrotated.
		if reopenErr := h.open(); reopenErr != nil {
			h.rotateErr.report("reopen of %s after failed rotation: %v", h.path, reopenErr)
			h.rotationDisabled = true // sticky until restart
		}
		return
	}
	h.rotateErr.reset()
}

func (h *RotatingFileHandler) doRotate() error {
	if h.file != nil {
		h.file.Sync()
		if err := h.file.Close(); err != nil {
			h.file = nil
			return fmt.Errorf("close current file: %w", err)
		}
		h.file = nil
	}

	if h.maxBackups >= 1 {
		// Delete the backup that would fall off the end, then shift the
		// rest highest-first so nothing is clobbered.
		oldest := h.backupPath(h.maxBackups)
		if _, err := os.Stat(oldest); err == nil {
			if err := os.Remove(oldest); err != nil {
				return fmt.Errorf("remove oldest backup: %w", err)
			}
		}
		for i := h.maxBackups - 1; i >= 1; i-- {
			src := h.backupPath(i)
			if _, err := os.Stat(src); err != nil {
				continue
			}
			if err := os.Rename(src, h.backupPath(i+1)); err != nil {
				return fmt.Errorf("shift backup %d: %w", i, err)
			}
		}
		if _, err := os.Stat(h.path); err == nil {
			if err := os.Rename(h.path, h.backupPath(1)); err != nil {
				return fmt.Errorf("rotate current file: %w", err)
			}
		}
	} else {
		// No backups kept: rotation just starts the active file over.
		if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("truncate current file: %w", err)
		}
	}

	h.currentSize = 0
	return h.open()
}

// open (re)opens the active file in append mode and resynchronizes
// currentSize from the filesystem. Called with the lock held.
func (h *RotatingFileHandler) open() error {
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		h.file = nil
		return err
	}
	h.file = f
	h.currentSize = 0
	if fi, statErr := f.Stat(); statErr == nil {
		h.currentSize = fi.Size()
	}
	return nil
}

func (h *RotatingFileHandler) backupPath(index int) string {
	return h.path + "." + strconv.Itoa(index)
}

// Flush syncs the file to disk, waiting at most SyncTimeout. A timeout
// produces a one-time warning and returns; flushing must never be able to
// hang application shutdown.
func (h *RotatingFileHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.file == nil {
		return nil
	}
	h.syncBounded(h.file)
	return nil
}

func (h *RotatingFileHandler) syncBounded(f *os.File) {
	done := make(chan error, 1)
	go func() {
		done <- f.Sync()
	}()
	select {
	case <-done:
	case <-time.After(h.syncTimeout):
		h.flushWarn.Do(func() {
			fmt.Fprintf(diagnostics, "agoralog: flush of %s timed out after %v\n", h.path, h.syncTimeout)
		})
	}
}

// Close syncs and closes the file. Idempotent.
func (h *RotatingFileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	if h.file != nil {
		h.syncBounded(h.file)
		h.file.Close()
		h.file = nil
	}
	return nil
}

// RotationDisabled reports whether the handler has entered the sticky
// degraded state after a failed rotation.
func (h *RotatingFileHandler) RotationDisabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rotationDisabled
}
