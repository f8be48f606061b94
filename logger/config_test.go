package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-platform/agoralog/core"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("orders")

	assert.Equal(t, "orders", cfg.ServiceName)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0", cfg.Version)
	assert.Equal(t, core.InfoLevel, cfg.Level)
	assert.Equal(t, "json", cfg.ConsoleFormat)
	assert.Equal(t, "logs/app.log", cfg.FilePath)
	assert.Equal(t, int64(100*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, 5, cfg.MaxBackupCount)
	assert.Equal(t, 10000, cfg.QueueCapacity)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 100*time.Millisecond, cfg.BatchTimeout)

	require.NoError(t, cfg.Validate())
}

func TestConfigValidateRequiresServiceName(t *testing.T) {
	var cfg Config
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service name")
}

func TestConfigValidateNormalizes(t *testing.T) {
	cfg := Config{ServiceName: "svc"}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0", cfg.Version)
	assert.Equal(t, "json", cfg.ConsoleFormat)
	assert.Equal(t, 10*time.Second, cfg.FlushTimeout)
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"unknown format", func(c *Config) { c.ConsoleFormat = "xml" }},
		{"file without path", func(c *Config) { c.FileEnabled = true; c.FilePath = "" }},
		{"negative backups", func(c *Config) { c.MaxBackupCount = -1 }},
		{"negative capacity", func(c *Config) { c.QueueCapacity = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{ServiceName: "svc"}
			tc.mut(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
