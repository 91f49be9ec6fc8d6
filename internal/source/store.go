// Package source provides the versioned document store every compilation
// stage reads from: content snapshots keyed by SourceFileId, each stamped
// with a monotonic version and a content hash used for cache fingerprinting.
package source

import (
	"sync"

	"github.com/opmodel/tscompiler/internal/span"
)

// Snapshot is an immutable view of one document at one version. Once
// returned from the Store it is never mutated — callers that need a later
// version call Store.Snapshot again.
type Snapshot struct {
	File        span.SourceFileId
	Version     int
	Text        string
	ContentHash string
}

// Store holds the live set of documents known to a workspace. It is safe for
// concurrent use by a single process but, per spec.md §5, must not be shared
// across Sessions running in parallel — each Workspace owns one Store.
type Store struct {
	mu   sync.RWMutex
	docs map[span.SourceFileId]*Snapshot
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{docs: make(map[span.SourceFileId]*Snapshot)}
}

// Open registers a document at version 0, or is a no-op if already open.
func (s *Store) Open(file span.SourceFileId, text string) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.docs[file]; ok {
		return existing
	}
	snap := &Snapshot{File: file, Version: 0, Text: text, ContentHash: span.StableHash(text)}
	s.docs[file] = snap
	return snap
}

// Update replaces a document's content, incrementing its version. A no-op
// content change (identical text) still bumps the version but keeps the
// same ContentHash, so fingerprint-based caches correctly treat it as
// unchanged even though the version counter advanced.
func (s *Store) Update(file span.SourceFileId, text string) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	prevVersion := 0
	if existing, ok := s.docs[file]; ok {
		prevVersion = existing.Version
	}
	snap := &Snapshot{File: file, Version: prevVersion + 1, Text: text, ContentHash: span.StableHash(text)}
	s.docs[file] = snap
	return snap
}

// Remove purges a document from the store. Callers also need to purge its
// provenance edges and cached stage outputs; Store only owns content.
func (s *Store) Remove(file span.SourceFileId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, file)
}

// Snapshot returns the current snapshot for file, or false if not open.
func (s *Store) Snapshot(file span.SourceFileId) (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.docs[file]
	return snap, ok
}

// Files returns every currently open file, in no particular order.
func (s *Store) Files() []span.SourceFileId {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]span.SourceFileId, 0, len(s.docs))
	for f := range s.docs {
		out = append(out, f)
	}
	return out
}
