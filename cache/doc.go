// Package cache provides a process-wide, thread-safe, memory-bounded store
// of markdown documents mirrored from a filesystem tree.
//
// # Cache
//
// A [Cache] maps filesystem paths to [Entry] values. It is constructed once
// at process start with [New] and passed explicitly to every collaborator —
// there is no package-level instance. The byte budget ([WithMaxSize],
// 200 MiB by default) is a hard invariant: the sum of all entry sizes never
// exceeds it, and any insertion or replacement that would cross it is
// rejected whole, reported as a boolean, never partially applied.
//
// # Operations
//
//   - [Cache.Load] — recursive bulk load of `.md` files from one or more
//     base directories, skipping archive/backup/template directories and
//     anything date-stamped. Files are read in parallel; unreadable files
//     are logged and skipped, never fatal.
//   - [Cache.Get] — point lookup with hit/miss accounting. A miss is a
//     miss: there is no disk fallback. An optional [KeyResolver] reconciles
//     legacy path spellings before a miss is counted.
//   - [Cache.GetByType], [Cache.Search] — linear filtering scans; result
//     order is unspecified.
//   - [Cache.Refresh] — mtime-based re-synchronization of one path:
//     dropped when the file is gone, replaced when newer, no-op otherwise.
//   - [Cache.Update], [Cache.Create] — write-through: disk first, memory
//     second. The cache never reflects a write that did not durably succeed.
//   - [Cache.Statistics], [Cache.Clear], [Cache.AllPaths].
//
// # Concurrency
//
// One reader/writer mutex guards all shared state, so operations are
// linearizable. The lock is held across the disk write in Update and Create
// to keep the write and the cache commit atomic with respect to each other;
// the cost is that a slow disk briefly stalls the cache, acceptable for
// small-to-medium markdown files. [Watcher] drives Refresh from fsnotify
// events for callers that prefer not to poll.
//
// # Classification
//
// Every entry gets a [DocType] from an ordered rule chain over path and
// content markers (standards, then incidents, then projects, first match
// wins). See classify.go.
package cache
