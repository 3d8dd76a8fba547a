package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hupe1980/sdci/persistence"
	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration file.
type Config struct {
	// Alphabet lists the text characters; character i becomes symbol i.
	Alphabet string `yaml:"alphabet"`
	// Q is the q-gram length.
	Q uint64 `yaml:"q"`
	// K is the sampling step.
	K uint64 `yaml:"k"`
	// Compression is one of none, lz4 or zstd.
	Compression string `yaml:"compression"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
	// Storage selects where snapshots are kept.
	Storage StorageConfig `yaml:"storage"`
}

// StorageConfig selects the snapshot backend.
type StorageConfig struct {
	// Backend is one of file, local, minio or s3.
	Backend   string `yaml:"backend"`
	Root      string `yaml:"root"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Alphabet:    "ACGT",
		Q:           12,
		K:           4,
		Compression: "zstd",
		LogLevel:    "warn",
		Storage: StorageConfig{
			Backend: "file",
		},
	}
}

// LoadConfig reads path over the defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	if c.Alphabet == "" {
		return fmt.Errorf("alphabet must not be empty")
	}
	if c.Q == 0 || c.K == 0 {
		return fmt.Errorf("q and k must be positive (q=%d, k=%d)", c.Q, c.K)
	}
	if c.K > c.Q {
		return fmt.Errorf("k (%d) must not exceed q (%d)", c.K, c.Q)
	}
	if _, err := persistence.ParseCompression(c.Compression); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	switch c.Storage.Backend {
	case "", "file":
	case "local":
		if c.Storage.Root == "" {
			return fmt.Errorf("storage backend local requires root")
		}
	case "minio":
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			return fmt.Errorf("storage backend minio requires endpoint and bucket")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage backend s3 requires bucket")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
