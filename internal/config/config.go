// Package config loads the extraction policy shared by the hwpcat, hwpmcp
// and hwpd binaries from a YAML file and HWPCAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hanpama/hwptext"
)

const envPrefix = "HWPCAT_"

// Config is the extraction policy.
type Config struct {
	Keywords    []string `yaml:"keywords"`
	FailMissing bool     `yaml:"fail_missing"`
	Strict      bool     `yaml:"strict"`

	// Format is hwp, hwpx, or empty for auto-detection.
	Format      string `yaml:"format"`
	MaxFileMB   int64  `yaml:"max_file_mb"`
	Concurrency int    `yaml:"concurrency"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Addr is the hwpd listen address.
	Addr string `yaml:"addr"`
}

// Default returns the policy used when nothing is configured.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads .env if present, then the YAML file at path (optional), then
// overlays HWPCAT_* environment variables, and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		var err error
		cfg, err = LoadFile(path)
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML policy file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MaxFileMB <= 0 {
		c.MaxFileMB = 100
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(envPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s=%q: %w", envPrefix, key, v, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, set func(int64)) {
		if v, ok := lookup(envPrefix + key); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s=%q: %w", envPrefix, key, v, err))
				return
			}
			set(n)
		}
	}

	if v, ok := lookup(envPrefix + "KEYWORDS"); ok {
		c.Keywords = SplitKeywords(v)
	}
	boolean("FAIL_MISSING", &c.FailMissing)
	boolean("STRICT", &c.Strict)
	str("FORMAT", &c.Format)
	integer("MAX_FILE_MB", func(n int64) { c.MaxFileMB = n })
	integer("CONCURRENCY", func(n int64) { c.Concurrency = int(n) })
	str("LOG_LEVEL", &c.LogLevel)
	str("ADDR", &c.Addr)

	return errors.Join(errs...)
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if _, err := hwptext.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("format %q: %w", c.Format, err)
	}
	if c.MaxFileMB <= 0 {
		return fmt.Errorf("max_file_mb must be positive, got %d", c.MaxFileMB)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Extractor builds the library configuration for this policy.
func (c *Config) Extractor(logger *slog.Logger) hwptext.Config {
	cfg := hwptext.Config{
		MaxFileSize: c.MaxFileMB << 20,
		Concurrency: c.Concurrency,
		Logger:      logger,
	}
	if c.Strict {
		cfg.Tags = hwptext.StrictTagTable()
	}
	return cfg
}

// Logger returns a text logger on w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SplitKeywords splits a comma separated list, dropping blank entries.
func SplitKeywords(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", s, err)
	}
	return level, nil
}
