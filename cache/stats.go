package cache

import (
	"os"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Statistics is a point-in-time snapshot of cache counters and memory
// accounting. Hits and misses are monotonic across the cache's lifetime;
// Clear resets the byte accounting but not the counters.
type Statistics struct {
	Hits               uint64          `json:"hits"`
	Misses             uint64          `json:"misses"`
	HitRatePercent     float64         `json:"hit_rate_percent"`
	FilesLoaded        uint64          `json:"files_loaded"`
	MemoryUsageBytes   int64           `json:"memory_usage_bytes"`
	TotalDocuments     int             `json:"total_documents"`
	MaxMemoryBytes     int64           `json:"max_memory_bytes"`
	MemoryUsagePercent float64         `json:"memory_usage_percent"`
	DocumentTypeCounts map[DocType]int `json:"document_type_counts"`

	// Process and system figures come from gopsutil and are zero when the
	// probe fails; they are informational, never an error.
	ProcessRSSBytes        uint64 `json:"process_rss_bytes"`
	SystemMemoryTotalBytes uint64 `json:"system_memory_total_bytes"`
}

// Statistics returns a snapshot of the cache's counters, per-type document
// counts, and memory figures.
func (c *Cache) Statistics() Statistics {
	c.mutex.RLock()
	st := Statistics{
		Hits:               c.hits,
		Misses:             c.misses,
		FilesLoaded:        c.filesLoaded,
		MemoryUsageBytes:   c.totalSize,
		TotalDocuments:     len(c.entries),
		MaxMemoryBytes:     c.cfg.maxSize,
		DocumentTypeCounts: make(map[DocType]int),
	}
	for _, e := range c.entries {
		st.DocumentTypeCounts[e.DocType]++
	}
	c.mutex.RUnlock()

	if total := st.Hits + st.Misses; total > 0 {
		st.HitRatePercent = float64(st.Hits) / float64(total) * 100
	}
	if st.MaxMemoryBytes > 0 {
		st.MemoryUsagePercent = float64(st.MemoryUsageBytes) / float64(st.MaxMemoryBytes) * 100
	}
	st.ProcessRSSBytes = processRSS()
	st.SystemMemoryTotalBytes = systemMemory()
	return st
}

// processRSS returns the resident set size of the current process in bytes.
func processRSS() uint64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	if info, err := proc.MemoryInfo(); err == nil {
		return info.RSS
	}
	// Fallback if gopsutil fails
	return 0
}

// systemMemory returns the total system memory in bytes.
func systemMemory() uint64 {
	if vmStat, err := mem.VirtualMemory(); err == nil {
		return vmStat.Total
	}
	// Fallback if gopsutil fails
	return 0
}
