package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/handler"
)

func fileOnlyConfig(t *testing.T, async bool) Config {
	t.Helper()
	cfg := DefaultConfig("svc")
	cfg.Level = core.DebugLevel
	cfg.ConsoleEnabled = false
	cfg.FilePath = filepath.Join(t.TempDir(), "app.log")
	cfg.AsyncEnabled = async
	return cfg
}

func readJSONLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestNewContextRejectsInvalidConfig(t *testing.T) {
	_, err := NewContext(Config{})
	require.Error(t, err)
}

func TestNewContextReportsUnwritableFile(t *testing.T) {
	cfg := fileOnlyConfig(t, false)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.FilePath = filepath.Join(blocker, "app.log") // parent is a regular file

	_, err := NewContext(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open log file")
}

func TestGetLoggerCachesByName(t *testing.T) {
	ctx, err := NewContext(fileOnlyConfig(t, false))
	require.NoError(t, err)
	defer ctx.Shutdown()

	a := ctx.GetLogger("app.db")
	b := ctx.GetLogger("app.db")
	c := ctx.GetLogger("app.http")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "app.db", a.Name())

	// Derived loggers are not cached.
	d := a.WithContext(core.Int("shard", 3))
	assert.NotSame(t, a, d)
	assert.Same(t, a, ctx.GetLogger("app.db"))
}

func TestContextWritesEntriesToFile(t *testing.T) {
	cfg := fileOnlyConfig(t, false)
	ctx, err := NewContext(cfg)
	require.NoError(t, err)

	log := ctx.GetLogger("app.worker")
	log.Info("job started", core.Int("job_id", 42))
	log.Error("job failed")

	require.NoError(t, ctx.Shutdown())

	lines := readJSONLines(t, cfg.FilePath)
	require.Len(t, lines, 2)
	assert.Equal(t, "job started", lines[0]["message"])
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "svc", lines[0]["service"])
	assert.Equal(t, "app.worker", lines[0]["logger_name"])
	assert.Equal(t, float64(42), lines[0]["context"].(map[string]any)["job_id"])
	assert.Equal(t, "ERROR", lines[1]["level"])
}

func TestAsyncPipelineDeliversOnFlushAndShutdown(t *testing.T) {
	cfg := fileOnlyConfig(t, true)
	cfg.OverflowPolicy = handler.Block
	ctx, err := NewContext(cfg)
	require.NoError(t, err)

	log := ctx.GetLogger("app")
	for i := 0; i < 50; i++ {
		log.Info("queued entry", core.Int("i", i))
	}

	require.NoError(t, ctx.Flush())
	assert.Len(t, readJSONLines(t, cfg.FilePath), 50, "flush delivers everything queued so far")

	log.Info("after flush")
	require.NoError(t, ctx.Shutdown())
	assert.Len(t, readJSONLines(t, cfg.FilePath), 51)
}

func TestShutdownIsIdempotent(t *testing.T) {
	ctx, err := NewContext(fileOnlyConfig(t, true))
	require.NoError(t, err)

	require.NoError(t, ctx.Shutdown())
	require.NoError(t, ctx.Shutdown())
}

func TestDefaultContextLifecycle(t *testing.T) {
	require.NoError(t, Shutdown()) // safe with nothing installed

	_, err := GetLogger("app")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Nil(t, Default())

	cfg := fileOnlyConfig(t, false)
	ctx, err := Initialize(cfg)
	require.NoError(t, err)
	assert.Same(t, ctx, Default())

	log, err := GetLogger("app")
	require.NoError(t, err)
	log.Info("via package default")
	require.NoError(t, Flush())

	require.NoError(t, Shutdown())
	assert.Nil(t, Default())

	lines := readJSONLines(t, cfg.FilePath)
	require.Len(t, lines, 1)
	assert.Equal(t, "via package default", lines[0]["message"])
}
