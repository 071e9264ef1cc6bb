package cache

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DocType classifies a cached document by its role in the advising workspace.
type DocType string

const (
	DocTypeStandard DocType = "standard"
	DocTypeIncident DocType = "incident"
	DocTypeTask     DocType = "task"
	DocTypeProject  DocType = "project"
	DocTypeDocument DocType = "document"
)

// Entry is a single cached document plus its metadata. Entries are immutable
// once stored; mutating operations replace them wholesale. Callers always
// receive copies, so an Entry obtained from the cache never changes under
// the caller.
type Entry struct {
	// Path is the unique key: the filesystem path the document was read
	// from (or will be written to).
	Path string `json:"path"`
	// Content is the full UTF-8 body of the document.
	Content string `json:"content"`
	// Size is the byte length of Content.
	Size int64 `json:"size"`
	// ModifiedTime is the last known modification time of the backing file.
	ModifiedTime time.Time `json:"modified_time"`
	// DocType is the classification assigned by the rule chain in classify.go.
	DocType DocType `json:"doc_type"`
	// Metadata holds auxiliary string attributes (load timestamp,
	// content fingerprint).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Metadata keys populated by the cache itself.
const (
	MetaLoadedAt    = "loaded_at"
	MetaFingerprint = "fingerprint"
)

func newEntry(path, content string, modified time.Time) *Entry {
	return &Entry{
		Path:         path,
		Content:      content,
		Size:         int64(len(content)),
		ModifiedTime: modified,
		DocType:      Classify(path, content),
		Metadata: map[string]string{
			MetaLoadedAt:    time.Now().UTC().Format(time.RFC3339),
			MetaFingerprint: fingerprint(content),
		},
	}
}

// fingerprint returns a fast content hash used to detect unchanged files
// on reload without comparing full bodies.
func fingerprint(content string) string {
	return strconv.FormatUint(xxhash.Sum64String(content), 16)
}

// copy returns a caller-safe copy with its own metadata map.
func (e *Entry) copy() Entry {
	out := *e
	if e.Metadata != nil {
		out.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
