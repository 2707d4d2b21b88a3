// Package config loads the background remover's settings.
//
// Settings come from three layers, later layers winning:
//
//  1. Built-in defaults matching the web tool (threshold 30, transparent
//     replacement, white replacement colour, 50 MB upload limit).
//  2. An optional TOML file passed with --config.
//  3. Environment variables BGREMOVER_LOG_LEVEL and BGREMOVER_HTTP_ADDR.
//
// Example file:
//
//	log_level = "debug"
//
//	[removal]
//	color_threshold = 25
//	replace_with = "color"
//	replacement_color = "#f0f0f0"
//
//	[limits]
//	max_file_size_mb = 20
//
//	[http]
//	addr = "127.0.0.1:9000"
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/ironsheep/background-remover/internal/bgremove"
)

// Environment variables that override file settings.
const (
	EnvLogLevel = "BGREMOVER_LOG_LEVEL"
	EnvHTTPAddr = "BGREMOVER_HTTP_ADDR"
)

// Config is the complete runtime configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// Removal holds the defaults applied when a request leaves an option out.
	Removal bgremove.Options `toml:"removal"`

	Limits Limits `toml:"limits"`
	HTTP   HTTP   `toml:"http"`
	Cache  Cache  `toml:"cache"`

	// Parallel enables row-parallel pixel processing.
	Parallel bool `toml:"parallel"`
}

// Limits bounds the work a single request may cause.
type Limits struct {
	// MaxFileSizeMB rejects larger inputs with DECODE_FAILURE.
	MaxFileSizeMB int `toml:"max_file_size_mb"`

	// WarnMegapixels logs a warning for larger images; they are still
	// processed. Zero disables the warning.
	WarnMegapixels float64 `toml:"warn_megapixels"`
}

// HTTP configures the upload server.
type HTTP struct {
	Addr string `toml:"addr"`
}

// Cache configures the decoded-image cache used by the servers.
type Cache struct {
	// EvictSchedule is a cron spec ("@every 10m", "0 * * * *") on which the
	// cache is cleared. Empty disables eviction.
	EvictSchedule string `toml:"evict_schedule"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Removal:  bgremove.DefaultOptions(),
		Limits: Limits{
			MaxFileSizeMB:  50,
			WarnMegapixels: 16,
		},
		HTTP:     HTTP{Addr: ":8080"},
		Cache:    Cache{EvictSchedule: "@every 10m"},
		Parallel: true,
	}
}

// Load builds the configuration from defaults, the TOML file at path (if
// path is not empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	cfg.applyEnv(os.Getenv)
	cfg.Removal = cfg.Removal.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvHTTPAddr); v != "" {
		c.HTTP.Addr = v
	}
}

// Validate checks every setting and returns the first problem found.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Removal.Validate(); err != nil {
		return fmt.Errorf("invalid removal defaults: %w", err)
	}
	if c.Limits.MaxFileSizeMB <= 0 {
		return fmt.Errorf("limits.max_file_size_mb must be positive, got %d", c.Limits.MaxFileSizeMB)
	}
	if c.Limits.WarnMegapixels < 0 {
		return fmt.Errorf("limits.warn_megapixels must not be negative, got %g", c.Limits.WarnMegapixels)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr must not be empty")
	}
	if c.Cache.EvictSchedule != "" {
		if _, err := cron.ParseStandard(c.Cache.EvictSchedule); err != nil {
			return fmt.Errorf("invalid cache.evict_schedule %q: %w", c.Cache.EvictSchedule, err)
		}
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (log.Level, error) {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// MaxFileSize returns the input size limit in bytes.
func (c *Config) MaxFileSize() int64 {
	return int64(c.Limits.MaxFileSizeMB) << 20
}

// WarnPixels returns the large-image warning threshold in pixels.
func (c *Config) WarnPixels() int {
	return int(c.Limits.WarnMegapixels * 1e6)
}

// NewRemover builds a Remover from the configuration.
func (c *Config) NewRemover(logger *log.Logger) *bgremove.Remover {
	return bgremove.NewRemover(
		bgremove.WithLogger(logger),
		bgremove.WithParallel(c.Parallel),
		bgremove.WithWarnPixels(c.WarnPixels()),
	)
}
