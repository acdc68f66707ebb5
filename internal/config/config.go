// Package config loads wsgraph settings.
//
// Settings are resolved in increasing priority:
//
//  1. built-in defaults ([Default])
//  2. wsgraph.toml in the workspace root, or the file given with --config
//  3. a .env file in the workspace root
//  4. WSGRAPH_* process environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
)

// FileName is the configuration file looked up in the workspace root.
const FileName = "wsgraph.toml"

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config holds every setting of a wsgraph run.
type Config struct {
	// Packages lists package directory globs relative to the workspace
	// root. A leading "!" excludes matches. Empty means auto-discovery from
	// pnpm-workspace.yaml, package.json or Cargo.toml.
	Packages []string `toml:"packages"`

	// Concurrency bounds parallel manifest reads. Zero means one per CPU.
	Concurrency int `toml:"concurrency"`

	// MetricsFile, when set, receives Prometheus metrics in text format
	// after every run.
	MetricsFile string `toml:"metrics_file"`

	Cache CacheConfig `toml:"cache"`
}

// CacheConfig selects and tunes the query result cache.
type CacheConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	TTL           time.Duration `toml:"ttl"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPrefix   string        `toml:"redis_prefix"`
	MemoryEntries int           `toml:"memory_entries"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend:       BackendFile,
			TTL:           24 * time.Hour,
			RedisAddr:     "localhost:6379",
			RedisPrefix:   "wsgraph:",
			MemoryEntries: 1024,
		},
	}
}

// Load resolves the configuration for the workspace at root. An explicit
// path must exist; the default wsgraph.toml and .env are optional.
func Load(root, path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, FileName)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !os.IsNotExist(err) || explicit {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read %s", path)
		}
	}

	dotenv, err := godotenv.Read(filepath.Join(root, ".env"))
	if err != nil && !os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read .env")
	}
	if err := cfg.applyEnv(func(key string) string {
		return firstNonEmpty(strings.TrimSpace(os.Getenv(key)), strings.TrimSpace(dotenv[key]))
	}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("WSGRAPH_PACKAGES"); v != "" {
		c.Packages = splitList(v)
	}
	if v := getenv("WSGRAPH_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "WSGRAPH_CONCURRENCY")
		}
		c.Concurrency = n
	}
	if v := getenv("WSGRAPH_METRICS_FILE"); v != "" {
		c.MetricsFile = v
	}
	if v := getenv("WSGRAPH_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v := getenv("WSGRAPH_CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := getenv("WSGRAPH_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "WSGRAPH_CACHE_TTL")
		}
		c.Cache.TTL = d
	}
	if v := getenv("WSGRAPH_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	return nil
}

// Validate reports the first invalid setting as an INVALID_CONFIG error.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendNone:
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"cache.backend: %q (must be one of: file, memory, redis, none)", c.Cache.Backend)
	}
	if c.Concurrency < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "concurrency: must not be negative, got %d", c.Concurrency)
	}
	if c.Cache.TTL < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "cache.ttl: must not be negative, got %s", c.Cache.TTL)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "cache.redis_addr: required for the redis backend")
	}
	if c.Cache.Backend == BackendMemory && c.Cache.MemoryEntries <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "cache.memory_entries: must be positive, got %d", c.Cache.MemoryEntries)
	}
	for _, p := range c.Packages {
		if strings.TrimPrefix(p, "!") == "" {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "packages: empty pattern")
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
