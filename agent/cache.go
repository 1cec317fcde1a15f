package agent

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// CachedAnswer is a fully vetted answer with its source attributions.
type CachedAnswer struct {
	Answer  string
	Sources []RankedHit
}

type cacheEntry struct {
	value    CachedAnswer
	deadline time.Time
}

// AnswerCache is a process-local TTL cache for answered questions. Entries
// expire after a fixed wall-clock TTL and are deleted lazily on lookup; the
// LRU cap bounds memory between lookups. Concurrent callers asking the same
// question may both miss and compute twice; that is accepted.
type AnswerCache struct {
	entries *lru.Cache
	ttl     time.Duration
	now     func() time.Time
}

func NewAnswerCache(size int, ttl time.Duration) (*AnswerCache, error) {
	entries, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &AnswerCache{entries: entries, ttl: ttl, now: time.Now}, nil
}

// cacheKey normalizes a question so trivial whitespace and case differences
// share an entry.
func cacheKey(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}

// Get returns the cached answer for a question if present and unexpired.
// Expired entries are removed on the way out.
func (c *AnswerCache) Get(question string) (CachedAnswer, bool) {
	key := cacheKey(question)
	raw, ok := c.entries.Get(key)
	if !ok {
		return CachedAnswer{}, false
	}
	entry := raw.(cacheEntry)
	if c.now().After(entry.deadline) {
		c.entries.Remove(key)
		return CachedAnswer{}, false
	}
	return entry.value, true
}

// Put stores an answer with a fresh TTL deadline.
func (c *AnswerCache) Put(question string, value CachedAnswer) {
	c.entries.Add(cacheKey(question), cacheEntry{
		value:    value,
		deadline: c.now().Add(c.ttl),
	})
}
