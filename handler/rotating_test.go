package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/formatter"
)

// fixedEntry builds an entry whose text-formatted record is exactly 64
// bytes, so rotation arithmetic in these tests is deterministic:
// 16 records fill a 1 KiB file exactly.
func fixedEntry(i int) *core.Entry {
	return &core.Entry{
		Time:    time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Level:   core.InfoLevel,
		Message: fmt.Sprintf("entry-%03d-%s", i, strings.Repeat("x", 13)),
		Service: "s",
	}
}

// readRecords returns the non-empty lines of the active file and all its
// numbered backups, newest file last.
func readRecords(t *testing.T, path string, maxBackups int) []string {
	t.Helper()
	var lines []string
	for i := maxBackups; i >= 0; i-- {
		p := path
		if i > 0 {
			p = fmt.Sprintf("%s.%d", path, i)
		}
		data, err := os.ReadFile(p)
		if os.IsNotExist(err) {
			continue
		}
		require.NoError(t, err)
		for _, line := range strings.Split(string(data), "\n") {
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

func newRotatingHandler(t *testing.T, maxSize int64, maxBackups int) (*RotatingFileHandler, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewRotatingFileHandler(RotatingConfig{
		Path:       path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Formatter:  formatter.NewTextFormatter(),
	})
	require.NoError(t, err)
	return h, path
}

func TestRotatingFileHandlerRecordSizeAssumption(t *testing.T) {
	data, err := formatter.NewTextFormatter().Format(fixedEntry(0))
	require.NoError(t, err)
	require.Len(t, data, 64, "rotation tests assume 64-byte records, got %d: %q", len(data), data)
}

// 1 KiB threshold, 3 backups, 50 entries of 64 bytes: 16+16+16 records
// rotate into the three backups and 2 remain active; nothing is lost.
func TestRotatingFileHandlerAllRecordsSurvive(t *testing.T) {
	h, path := newRotatingHandler(t, 1024, 3)
	defer h.Close()

	for i := 0; i < 50; i++ {
		require.NoError(t, h.Emit(fixedEntry(i)))
	}
	require.NoError(t, h.Close())

	records := readRecords(t, path, 3)
	require.Len(t, records, 50)

	seen := make(map[string]bool)
	for _, r := range records {
		assert.False(t, seen[r], "duplicated record %q", r)
		seen[r] = true
	}
}

func TestRotatingFileHandlerBackupLayout(t *testing.T) {
	h, path := newRotatingHandler(t, 1024, 3)
	defer h.Close()

	for i := 0; i < 50; i++ {
		require.NoError(t, h.Emit(fixedEntry(i)))
	}
	require.NoError(t, h.Close())

	// .1 is the newest backup (entries 32..47), .3 the oldest (0..15).
	for backup, first := range map[int]int{1: 32, 2: 16, 3: 0} {
		data, err := os.ReadFile(fmt.Sprintf("%s.%d", path, backup))
		require.NoError(t, err)
		assert.Contains(t, string(data), fmt.Sprintf("entry-%03d", first))
	}

	active, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(active), "entry-048")
	assert.Contains(t, string(active), "entry-049")
}

func TestRotatingFileHandlerNeverExceedsBackupCount(t *testing.T) {
	h, path := newRotatingHandler(t, 1024, 3)
	defer h.Close()

	for i := 0; i < 200; i++ {
		require.NoError(t, h.Emit(fixedEntry(i)))

		matches, err := filepath.Glob(path + ".*")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(matches), 3)
	}
}

func TestRotatingFileHandlerResumesSizeFromDisk(t *testing.T) {
	h, path := newRotatingHandler(t, 1024, 3)
	for i := 0; i < 10; i++ {
		require.NoError(t, h.Emit(fixedEntry(i)))
	}
	require.NoError(t, h.Close())

	// A restarted handler must continue toward the same threshold: 10
	// records (640 bytes) already on disk leave room for 6 more before
	// the next write would cross 1 KiB.
	h2, err := NewRotatingFileHandler(RotatingConfig{
		Path:       path,
		MaxSize:    1024,
		MaxBackups: 3,
		Formatter:  formatter.NewTextFormatter(),
	})
	require.NoError(t, err)
	defer h2.Close()

	for i := 10; i < 16; i++ {
		require.NoError(t, h2.Emit(fixedEntry(i)))
	}
	_, err = os.Stat(path + ".1")
	assert.True(t, os.IsNotExist(err), "no rotation expected yet")

	require.NoError(t, h2.Emit(fixedEntry(16)))
	_, err = os.Stat(path + ".1")
	assert.NoError(t, err, "17th record must trigger the rotation")
}

func TestRotatingFileHandlerNoRotationWhenDisabled(t *testing.T) {
	h, path := newRotatingHandler(t, 0, 3)
	defer h.Close()

	for i := 0; i < 100; i++ {
		require.NoError(t, h.Emit(fixedEntry(i)))
	}
	require.NoError(t, h.Close())

	matches, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	assert.Empty(t, matches, "MaxSize 0 means plain append mode")

	records := readRecords(t, path, 0)
	assert.Len(t, records, 100)
}

// A rotation that fails (the oldest backup slot is occupied by a
// non-empty directory, so it cannot be deleted) degrades to appending on
// the original path without losing records.
func TestRotatingFileHandlerRotationFailureKeepsWriting(t *testing.T) {
	h, path := newRotatingHandler(t, 1024, 3)
	defer h.Close()

	require.NoError(t, os.Mkdir(path+".3", 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path+".3", "blocker"), []byte("x"), 0644))

	for i := 0; i < 40; i++ {
		require.NoError(t, h.Emit(fixedEntry(i)))
	}
	require.NoError(t, h.Close())

	assert.False(t, h.RotationDisabled())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	count := strings.Count(string(data), "\n")
	assert.Equal(t, 40, count, "all records must land in the unrotated file")
}

// When the whole directory disappears, rotation and the original-path
// reopen both fail; the handler enters the sticky degraded state and
// subsequent emits are absorbed without error.
func TestRotatingFileHandlerStickyDegradedState(t *testing.T) {
	h, path := newRotatingHandler(t, 1024, 3)
	defer h.Close()

	for i := 0; i < 10; i++ {
		require.NoError(t, h.Emit(fixedEntry(i)))
	}

	require.NoError(t, os.RemoveAll(filepath.Dir(path)))

	// Push past the threshold to force a rotation attempt.
	for i := 10; i < 30; i++ {
		require.NoError(t, h.Emit(fixedEntry(i)))
	}

	assert.True(t, h.RotationDisabled())

	// Still absorbing writes without panicking or erroring.
	require.NoError(t, h.Emit(fixedEntry(99)))
}

func TestRotatingFileHandlerCloseAndFlushIdempotent(t *testing.T) {
	h, _ := newRotatingHandler(t, 1024, 3)

	require.NoError(t, h.Emit(fixedEntry(0)))
	require.NoError(t, h.Flush())
	require.NoError(t, h.Flush())
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	// Emit after close is a no-op, not an error.
	require.NoError(t, h.Emit(fixedEntry(1)))
}

func TestRotatingFileHandlerCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dirs", "app.log")
	h, err := NewRotatingFileHandler(RotatingConfig{Path: path})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Emit(fixedEntry(0)))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRotatingFileHandlerRequiresPath(t *testing.T) {
	_, err := NewRotatingFileHandler(RotatingConfig{})
	assert.Error(t, err)
}
