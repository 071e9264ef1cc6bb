// Package config loads doccache configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the file nor the environment says otherwise.
const (
	DefaultMaxSize       = "200MB"
	DefaultLogFormat     = "console"
	DefaultWatchDebounce = "250ms"
)

// Config is the on-disk configuration shape.
type Config struct {
	// BasePaths are the directory trees bulk-loaded into the cache.
	BasePaths []string `yaml:"base_paths"`
	// MaxSize is the cache byte budget in human units ("200MB", "1GiB").
	MaxSize string `yaml:"max_size"`
	// LogLevel is one of trace, debug, info, warn, error, none.
	LogLevel string `yaml:"log_level"`
	// LogFormat selects console or json output.
	LogFormat string `yaml:"log_format"`
	// IgnoreMarkers replaces the default directory denylist when non-empty.
	IgnoreMarkers []string `yaml:"ignore_markers"`
	// WatchDebounce is the event-coalescing window for watch mode ("250ms").
	WatchDebounce string `yaml:"watch_debounce"`
	// LoadConcurrency bounds parallel file reads during load.
	LoadConcurrency int `yaml:"load_concurrency"`
}

// Load reads the YAML file at path (missing file is not an error — defaults
// apply) and then applies DOCCACHE_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		MaxSize:       DefaultMaxSize,
		LogFormat:     DefaultLogFormat,
		WatchDebounce: DefaultWatchDebounce,
	}
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, "config: read %s", path)
			}
		} else if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, errors.Wrapf(err, "config: parse %s", path)
		}
	}
	cfg.applyEnv()
	if cfg.MaxSize == "" {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.WatchDebounce == "" {
		cfg.WatchDebounce = DefaultWatchDebounce
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DOCCACHE_BASE_PATHS"); v != "" {
		c.BasePaths = splitList(v)
	}
	if v := os.Getenv("DOCCACHE_MAX_SIZE"); v != "" {
		c.MaxSize = v
	}
	if v := os.Getenv("DOCCACHE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DOCCACHE_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("DOCCACHE_WATCH_DEBOUNCE"); v != "" {
		c.WatchDebounce = v
	}
	if v := os.Getenv("DOCCACHE_LOAD_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LoadConcurrency = n
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, string(os.PathListSeparator)) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MaxSizeBytes parses the MaxSize field into bytes.
func (c *Config) MaxSizeBytes() (int64, error) {
	return ParseByteSize(c.MaxSize)
}

// WatchDebounceDuration parses the WatchDebounce field. Accepts the extended
// duration syntax of str2duration ("1d12h" and the like), not that anyone
// should debounce for a day.
func (c *Config) WatchDebounceDuration() (time.Duration, error) {
	d, err := str2duration.ParseDuration(c.WatchDebounce)
	if err != nil {
		return 0, errors.Wrapf(err, "config: watch_debounce %q", c.WatchDebounce)
	}
	return d, nil
}

var sizeUnits = []struct {
	suffix     string
	multiplier int64
}{
	{"gib", 1 << 30},
	{"gb", 1 << 30},
	{"mib", 1 << 20},
	{"mb", 1 << 20},
	{"kib", 1 << 10},
	{"kb", 1 << 10},
	{"g", 1 << 30},
	{"m", 1 << 20},
	{"k", 1 << 10},
	{"b", 1},
}

// ParseByteSize parses a human byte size ("200MB", "1.5GiB", "1024") into
// bytes. Unit-less values are bytes. Binary multiples throughout; the
// workspace convention never meant decimal megabytes.
func ParseByteSize(s string) (int64, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, errors.New("config: empty size")
	}
	multiplier := int64(1)
	for _, unit := range sizeUnits {
		if strings.HasSuffix(v, unit.suffix) {
			multiplier = unit.multiplier
			v = strings.TrimSpace(strings.TrimSuffix(v, unit.suffix))
			break
		}
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "config: size %q", s)
	}
	if n < 0 {
		return 0, errors.Newf("config: negative size %q", s)
	}
	return int64(n * float64(multiplier)), nil
}
