package cache

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce coalesces bursts of filesystem events for the same
// path (editors typically write a file several times in quick succession).
const DefaultWatchDebounce = 250 * time.Millisecond

// RefreshEvent reports one watcher-driven Refresh call.
type RefreshEvent struct {
	Path string
	// Changed is the Refresh return value: true when the cache dropped or
	// replaced the entry for Path.
	Changed bool
}

// Watcher drives Cache.Refresh from filesystem notifications. It is a
// convenience over periodic polling, not a stronger consistency guarantee:
// Refresh stays advisory and mtime-based either way.
type Watcher struct {
	cache    *Cache
	fsw      *fsnotify.Watcher
	events   chan RefreshEvent
	fire     chan string
	debounce time.Duration
	done     chan struct{}
	once     sync.Once

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher watches each root directory tree and refreshes cached `.md`
// paths as they change on disk. New subdirectories are added to the watch
// as they appear. Close releases the underlying watcher.
func NewWatcher(c *Cache, roots []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "doccache: create watcher")
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	w := &Watcher{
		cache:    c,
		fsw:      fsw,
		events:   make(chan RefreshEvent, 32),
		fire:     make(chan string, 32),
		debounce: debounce,
		done:     make(chan struct{}),
		timers:   make(map[string]*time.Timer),
	}
	for _, root := range roots {
		if err := w.addWatchTree(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	go w.run()
	return w, nil
}

// Events delivers one RefreshEvent per debounced filesystem change. The
// channel is closed by Close. Slow consumers drop events rather than stall
// the watcher.
func (w *Watcher) Events() <-chan RefreshEvent {
	return w.events
}

// Close stops the watcher and closes the event channel.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) addWatchTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.cache.skipDir(d.Name()) {
			return fs.SkipDir
		}
		return w.fsw.Add(path)
	})
	return errors.Wrapf(err, "doccache: watch %s", root)
}

func (w *Watcher) run() {
	defer close(w.events)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.cache.log.Warn("watcher: %v", err)
		case path := <-w.fire:
			changed := w.cache.Refresh(path)
			// Slow consumers drop events rather than stall the watcher.
			select {
			case w.events <- RefreshEvent{Path: path, Changed: changed}:
			default:
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.cache.skipDir(filepath.Base(event.Name)) {
				_ = w.addWatchTree(event.Name)
			}
			return
		}
	}
	if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
		return
	}

	path := event.Name
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case w.fire <- path:
		case <-w.done:
		}
	})
}
