package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1024", 1024},
		{"1024b", 1024},
		{"1kb", 1 << 10},
		{"1KiB", 1 << 10},
		{"200MB", 200 << 20},
		{"200 MB", 200 << 20},
		{"1.5GiB", 3 << 29},
		{"2g", 2 << 30},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := ParseByteSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseByteSizeErrors(t *testing.T) {
	for _, in := range []string{"", "b", "lots", "-1mb"} {
		_, err := ParseByteSize(in)
		assert.Error(t, err, in)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxSize, cfg.MaxSize)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Empty(t, cfg.BasePaths)

	n, err := cfg.MaxSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(200<<20), n)

	d, err := cfg.WatchDebounceDuration()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doccache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_paths:
  - /workspace/standards
  - /workspace/incidents
max_size: 64MB
log_level: debug
log_format: json
ignore_markers: [scratch, wip]
watch_debounce: 1s
load_concurrency: 4
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/workspace/standards", "/workspace/incidents"}, cfg.BasePaths)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"scratch", "wip"}, cfg.IgnoreMarkers)
	assert.Equal(t, 4, cfg.LoadConcurrency)

	n, err := cfg.MaxSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(64<<20), n)

	d, err := cfg.WatchDebounceDuration()
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doccache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_size: 64MB\nlog_level: info\n"), 0o644))

	t.Setenv("DOCCACHE_MAX_SIZE", "16MB")
	t.Setenv("DOCCACHE_LOG_LEVEL", "trace")
	t.Setenv("DOCCACHE_BASE_PATHS", "/a"+string(os.PathListSeparator)+"/b")
	t.Setenv("DOCCACHE_LOAD_CONCURRENCY", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "16MB", cfg.MaxSize)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, []string{"/a", "/b"}, cfg.BasePaths)
	assert.Equal(t, 2, cfg.LoadConcurrency)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doccache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_paths: [unterminated"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
