package cache

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
)

// defaultIgnoreMarkers is the directory-name denylist applied during Load.
// Directories whose lowercased name contains one of these markers hold
// archived or templated material that must not shadow live documents.
var defaultIgnoreMarkers = []string{
	"archive",
	"[archive]",
	"backup",
	"old",
	"deprecated",
	"consolidated",
	"rename",
	"template",
}

// dateStampRe matches directory names that start with a date stamp
// (2024-01, 2024_01_15, ...), the convention for retired snapshots.
var dateStampRe = regexp.MustCompile(`^\d{4}[-_]\d{2}([-_]\d{2})?`)

func (c *Cache) skipDir(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, ".") && lower != "." {
		return true
	}
	for _, marker := range c.cfg.ignoreMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return dateStampRe.MatchString(lower)
}

// Load walks each base path recursively and inserts every readable `.md`
// file that fits the byte budget, returning the number inserted. Per-file
// failures are logged and skipped; a walk error on one base path does not
// abort the others. Paths already cached and unchanged on disk (by mtime,
// then content fingerprint) are skipped rather than double-counted.
//
// Files are read in parallel (bounded by WithLoadConcurrency); insertion
// order is arrival order, which matters only when the budget runs out.
func (c *Cache) Load(ctx context.Context, basePaths ...string) int {
	var candidates []string
	for _, base := range basePaths {
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				c.log.Warn("walk %s: %v", path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				if path != base && c.skipDir(d.Name()) {
					return fs.SkipDir
				}
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".md") {
				candidates = append(candidates, path)
			}
			return nil
		})
		if err != nil {
			c.log.Warn("walk %s aborted: %v", base, err)
		}
	}

	var loaded int
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.loadConcurrency)
	for _, path := range candidates {
		path := path
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if c.loadFile(path) {
				c.mutex.Lock()
				loaded++
				c.filesLoaded++
				c.mutex.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	c.log.Info("loaded %d of %d candidate files", loaded, len(candidates))
	return loaded
}

// loadFile reads and inserts one file, returning true when the cache gained
// or replaced an entry for it.
func (c *Cache) loadFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		c.log.Warn("skipping %s: %v", path, err)
		return false
	}

	// Unchanged by mtime: skip without re-reading.
	c.mutex.RLock()
	prev, cached := c.entries[path]
	upToDate := cached && !prev.ModifiedTime.Before(info.ModTime())
	c.mutex.RUnlock()
	if upToDate {
		c.log.Trace("skipping %s: already cached", path)
		return false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		c.log.Warn("skipping %s: %v", path, err)
		return false
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	// Re-check under the lock; another goroutine may have inserted it.
	prev = c.entries[path]
	if prev != nil && prev.Metadata[MetaFingerprint] == fingerprint(string(content)) {
		// Touched but not changed; keep the entry, advance the mtime.
		touched := prev.copy()
		touched.ModifiedTime = info.ModTime()
		c.entries[path] = &touched
		return false
	}
	fresh := newEntry(path, string(content), info.ModTime())
	if !c.replaceLocked(prev, fresh) {
		c.log.Warn("skipping %s: %d bytes would exceed budget", path, fresh.Size)
		return false
	}
	return true
}
