package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdci.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
alphabet: abcd
q: 6
k: 3
compression: lz4
log_level: debug
storage:
  backend: local
  root: /tmp/snapshots
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "abcd", cfg.Alphabet)
	assert.Equal(t, uint64(6), cfg.Q)
	assert.Equal(t, uint64(3), cfg.K)
	assert.Equal(t, "lz4", cfg.Compression)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/snapshots", cfg.Storage.Root)
	require.NoError(t, cfg.Validate())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdci.yaml")
	require.NoError(t, os.WriteFile(path, []byte("q: 8\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), cfg.Q)
	assert.Equal(t, DefaultConfig().Alphabet, cfg.Alphabet)
	assert.Equal(t, DefaultConfig().K, cfg.K)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("q: [1, 2"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"EmptyAlphabet", func(c *Config) { c.Alphabet = "" }},
		{"ZeroQ", func(c *Config) { c.Q = 0 }},
		{"KAboveQ", func(c *Config) { c.K = c.Q + 1 }},
		{"Compression", func(c *Config) { c.Compression = "brotli" }},
		{"LogLevel", func(c *Config) { c.LogLevel = "loud" }},
		{"Backend", func(c *Config) { c.Storage.Backend = "ftp" }},
		{"LocalWithoutRoot", func(c *Config) { c.Storage.Backend = "local" }},
		{"MinioWithoutBucket", func(c *Config) { c.Storage = StorageConfig{Backend: "minio", Endpoint: "localhost:9000"} }},
		{"S3WithoutBucket", func(c *Config) { c.Storage.Backend = "s3" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
