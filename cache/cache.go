package cache

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/advisorhub/doccache/logger"
)

// DefaultMaxSize is the default byte budget for a cache (200 MiB).
const DefaultMaxSize = 200 << 20

// DefaultLoadConcurrency bounds the number of files read in parallel
// during Load.
const DefaultLoadConcurrency = 8

// KeyResolver reconciles differing path-naming conventions. It is consulted
// only when a direct lookup misses; the cache works unchanged (missing more
// often) without one.
type KeyResolver interface {
	// FindByAnyKey maps a requested key onto one of the available keys,
	// returning false when no candidate is acceptable.
	FindByAnyKey(requested string, available []string) (string, bool)
}

// config holds the resolved configuration for a Cache.
type config struct {
	maxSize         int64
	loadConcurrency int
	ignoreMarkers   []string
	log             logger.Logger
	resolver        KeyResolver
}

// Option configures a Cache.
type Option func(*config)

func defaultConfig() config {
	return config{
		maxSize:         DefaultMaxSize,
		loadConcurrency: DefaultLoadConcurrency,
		ignoreMarkers:   defaultIgnoreMarkers,
		log:             logger.NewConsoleLogger(),
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithMaxSize sets the byte budget. Insertions that would push the total
// past the budget are rejected, never partially applied.
// Defaults to DefaultMaxSize (200 MiB).
func WithMaxSize(n int64) Option {
	return func(c *config) { c.maxSize = n }
}

// WithLogger sets the logger used for skipped files and budget rejections.
// Defaults to a console logger.
func WithLogger(log logger.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithResolver sets the optional key resolver consulted on lookup misses.
func WithResolver(r KeyResolver) Option {
	return func(c *config) { c.resolver = r }
}

// WithIgnoreMarkers replaces the directory-name denylist used during Load.
func WithIgnoreMarkers(markers []string) Option {
	return func(c *config) { c.ignoreMarkers = markers }
}

// WithLoadConcurrency bounds parallel file reads during Load.
// Defaults to DefaultLoadConcurrency.
func WithLoadConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.loadConcurrency = n
		}
	}
}

// Cache is a thread-safe, memory-bounded path→document store mirrored from a
// filesystem tree of markdown files. One instance is constructed at process
// start and handed to every collaborator; there is no package-level instance.
type Cache struct {
	mutex     sync.RWMutex
	entries   map[string]*Entry
	totalSize int64

	hits        uint64
	misses      uint64
	filesLoaded uint64

	cfg config
	log logger.Logger
}

// New returns an empty Cache with the given options applied.
func New(opts ...Option) *Cache {
	cfg := applyOptions(opts)
	return &Cache{
		entries: make(map[string]*Entry),
		cfg:     cfg,
		log:     cfg.log.WithPrefix("[doccache]"),
	}
}

// Get looks up a document by path. On a hit the entry is returned by value
// (caller-safe copy) and the hit counter is incremented; on a miss the miss
// counter is incremented. A miss is a miss: there is no disk fallback. When
// a KeyResolver is configured it is consulted before the lookup is counted
// as a miss.
func (c *Cache) Get(path string) (Entry, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if e, ok := c.entries[path]; ok {
		c.hits++
		return e.copy(), true
	}
	if c.cfg.resolver != nil {
		if resolved, ok := c.cfg.resolver.FindByAnyKey(path, c.pathsLocked()); ok {
			if e, ok := c.entries[resolved]; ok {
				c.hits++
				c.log.Debug("resolved %s -> %s", path, resolved)
				return e.copy(), true
			}
		}
	}
	c.misses++
	return Entry{}, false
}

// GetByType returns all entries with the given DocType. Order is unspecified.
func (c *Cache) GetByType(docType DocType) []Entry {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var out []Entry
	for _, e := range c.entries {
		if e.DocType == docType {
			out = append(out, e.copy())
		}
	}
	return out
}

// Search returns all entries whose content contains query, case-insensitively.
// Linear scan, no indexing. Order is unspecified.
func (c *Cache) Search(query string) []Entry {
	q := strings.ToLower(query)
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var out []Entry
	for _, e := range c.entries {
		if strings.Contains(strings.ToLower(e.Content), q) {
			out = append(out, e.copy())
		}
	}
	return out
}

// Refresh re-synchronizes one cached path against disk by modification time.
// It returns true when the cache changed: the backing file disappeared and
// the entry was dropped, or the file was newer and the entry was replaced.
// It returns false for unknown paths, up-to-date entries, and replacements
// rejected by the byte budget (the old entry stays).
func (c *Cache) Refresh(path string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		e, ok := c.entries[path]
		if !ok {
			return false
		}
		c.removeLocked(e)
		c.log.Debug("dropped %s: backing file gone", path)
		return true
	}

	e, ok := c.entries[path]
	if ok && !e.ModifiedTime.Before(info.ModTime()) {
		return false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		c.log.Warn("refresh %s: %v", path, err)
		return false
	}
	fresh := newEntry(path, string(content), info.ModTime())
	if !c.replaceLocked(e, fresh) {
		c.log.Warn("refresh %s rejected: would exceed budget", path)
		return false
	}
	return true
}

// Update is a write-through replacement: content is written to disk first,
// and only on a successful write does the in-memory entry change. On any
// failure the pre-call state is preserved, so the cache never reflects a
// write that did not durably succeed. The lock is held across the disk write
// to keep the write and the cache update atomic with respect to other
// operations; a slow disk stalls the cache for the duration.
func (c *Cache) Update(path, content string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	prev := c.entries[path]
	var prevSize int64
	if prev != nil {
		prevSize = prev.Size
	}
	if c.totalSize-prevSize+int64(len(content)) > c.cfg.maxSize {
		c.log.Warn("update %s rejected: would exceed budget", path)
		return false
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		c.log.Error("update %s: write failed: %v", path, err)
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		// Write succeeded but the stat did not; keep the pre-call entry
		// rather than storing a guessed mtime.
		c.log.Error("update %s: stat after write failed: %v", path, err)
		return false
	}
	c.replaceLocked(prev, newEntry(path, content, info.ModTime()))
	return true
}

// Create writes a new document (creating parent directories as needed) and
// inserts it. The byte budget is checked before anything touches disk, so a
// rejected create leaves neither a file nor an entry behind. Creating over
// an already-cached path behaves like Update.
func (c *Cache) Create(path, content string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	prev := c.entries[path]
	var prevSize int64
	if prev != nil {
		prevSize = prev.Size
	}
	if c.totalSize-prevSize+int64(len(content)) > c.cfg.maxSize {
		c.log.Warn("create %s rejected: would exceed budget", path)
		return false
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			c.log.Error("create %s: mkdir: %v", path, err)
			return false
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		c.log.Error("create %s: write failed: %v", path, err)
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		c.log.Error("create %s: stat after write failed: %v", path, err)
		return false
	}
	c.replaceLocked(prev, newEntry(path, content, info.ModTime()))
	return true
}

// AllPaths returns every cached path, sorted for stable output.
func (c *Cache) AllPaths() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	paths := c.pathsLocked()
	sort.Strings(paths)
	return paths
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// TotalSize returns the current byte accounting total.
func (c *Cache) TotalSize() int64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.totalSize
}

// Clear drops every entry and resets the byte accounting to zero. Hit and
// miss counters survive a Clear; they track the cache's whole lifetime.
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]*Entry)
	c.totalSize = 0
}

// pathsLocked returns the key set. Callers must hold the lock.
func (c *Cache) pathsLocked() []string {
	paths := make([]string, 0, len(c.entries))
	for p := range c.entries {
		paths = append(paths, p)
	}
	return paths
}

// replaceLocked swaps prev (which may be nil) for fresh, keeping the byte
// accounting exact. Returns false and leaves prev in place when fresh would
// not fit. Callers must hold the lock.
func (c *Cache) replaceLocked(prev, fresh *Entry) bool {
	var prevSize int64
	if prev != nil {
		prevSize = prev.Size
	}
	if c.totalSize-prevSize+fresh.Size > c.cfg.maxSize {
		return false
	}
	c.entries[fresh.Path] = fresh
	c.totalSize += fresh.Size - prevSize
	return true
}

// removeLocked drops an entry and its accounted bytes. Callers must hold
// the lock.
func (c *Cache) removeLocked(e *Entry) {
	delete(c.entries, e.Path)
	c.totalSize -= e.Size
}
