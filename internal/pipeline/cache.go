package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Entry is one persistent cache row: a stage's artifact plus the
// version it was produced under, so a version bump invalidates it even
// if the row is still physically present.
type Entry struct {
	Version      string
	ArtifactHash string
	Output       any
}

// PersistentCache is the two-phase cache protocol spec.md §4.1 step 4
// names: Get is the lookup phase (a miss is not an error), Put is the
// commit phase run only after a stage's Run has actually produced an
// artifact. Implementations must be safe for concurrent readers and
// writers (spec.md §4.1's Scheduling note), since multiple Sessions may
// share one persistent cache.
type PersistentCache interface {
	Get(cacheKey string) (Entry, bool, error)
	Put(cacheKey string, entry Entry) error
}

// MemCache is an in-process, bounded persistent cache backed by an LRU
// — the default when a caller wants cross-session reuse within one
// process but no disk I/O. Capacity bounds memory; eviction of a still-
// cacheKey-valid entry simply degrades back to source="run" on next
// access, never to a wrong answer.
type MemCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, Entry]
}

// NewMemCache returns a MemCache holding up to capacity entries.
func NewMemCache(capacity int) (*MemCache, error) {
	c, err := lru.New[string, Entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("pipeline: new mem cache: %w", err)
	}
	return &MemCache{cache: c}, nil
}

func (m *MemCache) Get(cacheKey string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.cache.Get(cacheKey)
	return e, ok, nil
}

func (m *MemCache) Put(cacheKey string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Add(cacheKey, entry)
	return nil
}

// FileCache is a persistent, disk-backed cache: one JSON file per
// cacheKey under Dir, written with json.Marshal and a write-then-rename,
// rather than an embedded KV store.
type FileCache struct {
	Dir string
	mu  sync.Mutex
}

// NewFileCache returns a FileCache rooted at dir, creating it if
// missing.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: create cache dir: %w", err)
	}
	return &FileCache{Dir: dir}, nil
}

func (f *FileCache) path(cacheKey string) string {
	return filepath.Join(f.Dir, cacheKey+".json")
}

func (f *FileCache) Get(cacheKey string) (Entry, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path(cacheKey))
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("pipeline: read cache entry: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("pipeline: decode cache entry: %w", err)
	}
	return e, true, nil
}

func (f *FileCache) Put(cacheKey string, entry Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("pipeline: encode cache entry: %w", err)
	}
	tmp := f.path(cacheKey) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("pipeline: write cache entry: %w", err)
	}
	return os.Rename(tmp, f.path(cacheKey))
}
