package scorer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/clair-gutierrez/sitetack/internal/encode"
)

// DefaultCacheTTL is how long a cached score stays valid (7 days).
const DefaultCacheTTL = 7 * 24 * time.Hour

type cachedEntry struct {
	Probability float64 `json:"probability"`
	RetrievedAt int64   `json:"retrieved_at"`
}

// Cache is a JSON-file backed store of window scores keyed by model and
// window. It is safe for concurrent use.
type Cache struct {
	path string
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedEntry
	loaded  bool
	dirty   bool
}

// NewCache returns a cache persisted at path. An empty path uses the user
// cache directory. ttl <= 0 disables expiry.
func NewCache(path string, ttl time.Duration) *Cache {
	if path == "" {
		path = DefaultCachePath()
	}
	return &Cache{path: path, ttl: ttl, now: time.Now}
}

// DefaultCachePath returns the per-user score cache location.
func DefaultCachePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		p := filepath.Join(dir, "sitetack")
		_ = os.MkdirAll(p, 0o755)
		return filepath.Join(p, "score_cache.json")
	}
	return filepath.Join(os.TempDir(), "sitetack_score_cache.json")
}

// Path returns where the cache is persisted.
func (c *Cache) Path() string { return c.path }

func (c *Cache) load() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return
	}
	c.entries = make(map[string]cachedEntry)
	if data, err := os.ReadFile(c.path); err == nil {
		_ = json.Unmarshal(data, &c.entries)
	}
	c.loaded = true
}

// Get returns a cached score if present and not expired.
func (c *Cache) Get(key string) (float64, bool) {
	c.load()
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	if c.ttl > 0 && c.now().Unix()-e.RetrievedAt > int64(c.ttl.Seconds()) {
		return 0, false
	}
	return e.Probability, true
}

// Set stores a score in memory; Flush persists it.
func (c *Cache) Set(key string, p float64) {
	c.load()
	c.mu.Lock()
	c.entries[key] = cachedEntry{Probability: p, RetrievedAt: c.now().Unix()}
	c.dirty = true
	c.mu.Unlock()
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.load()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Flush writes the cache to disk if it changed.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	b, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return err
	}
	c.dirty = false
	return nil
}

// Cached serves scores from cache and sends only the misses to Next.
type Cached struct {
	Next  Scorer
	Cache *Cache
	// Namespace keys the cache per model, e.g. "PHOSPHORYLATION_ST/HUMAN/NO_LABELS".
	Namespace string
}

func (s Cached) Score(ctx context.Context, batch encode.Batch) ([]float64, error) {
	out := make([]float64, batch.Len())
	keys := make([]string, batch.Len())
	var missIdx []int
	miss := encode.Batch{Length: batch.Length, Depth: batch.Depth}

	for i, row := range batch.Indices {
		sum := rowDigest(s.Namespace, row)
		keys[i] = hex.EncodeToString(sum[:])
		if p, ok := s.Cache.Get(keys[i]); ok {
			out[i] = p
			continue
		}
		missIdx = append(missIdx, i)
		miss.Indices = append(miss.Indices, row)
	}
	if len(missIdx) == 0 {
		return out, nil
	}

	probs, err := Checked(s.Next).Score(ctx, miss)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = probs[j]
		s.Cache.Set(keys[i], probs[j])
	}
	return out, s.Cache.Flush()
}
