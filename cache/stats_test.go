package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsSnapshot(t *testing.T) {
	dir := t.TempDir()
	c := newTestCache(t, WithMaxSize(1000))
	require.True(t, c.Create(filepath.Join(dir, "standards", "a.md"), "aaaaaaaaaa")) // 10 bytes
	require.True(t, c.Create(filepath.Join(dir, "b.md"), "bbbbbbbbbb"))              // 10 bytes

	c.Get(filepath.Join(dir, "b.md"))
	c.Get(filepath.Join(dir, "nope.md"))
	c.Get(filepath.Join(dir, "nope.md"))

	st := c.Statistics()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(2), st.Misses)
	assert.InDelta(t, 33.33, st.HitRatePercent, 0.01)
	assert.Equal(t, 2, st.TotalDocuments)
	assert.Equal(t, int64(20), st.MemoryUsageBytes)
	assert.Equal(t, int64(1000), st.MaxMemoryBytes)
	assert.InDelta(t, 2.0, st.MemoryUsagePercent, 0.01)
	assert.Equal(t, map[DocType]int{
		DocTypeStandard: 1,
		DocTypeDocument: 1,
	}, st.DocumentTypeCounts)
}

func TestStatisticsEmptyCache(t *testing.T) {
	c := newTestCache(t)
	st := c.Statistics()
	assert.Zero(t, st.Hits)
	assert.Zero(t, st.Misses)
	assert.Zero(t, st.HitRatePercent)
	assert.Zero(t, st.TotalDocuments)
	assert.Empty(t, st.DocumentTypeCounts)
}

func TestStatisticsProcessFigures(t *testing.T) {
	c := newTestCache(t)
	st := c.Statistics()
	// gopsutil should always find our own process on supported platforms.
	assert.Greater(t, st.ProcessRSSBytes, uint64(0))
	assert.Greater(t, st.SystemMemoryTotalBytes, uint64(0))
}
