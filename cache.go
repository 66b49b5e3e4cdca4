package inkwell

import (
	"sync"
	"time"
)

// docCache is an in-memory cache of parsed documents with a TTL, backing
// the preview server so draft listings do not reparse the content tree on
// every request. Watch mode calls Invalidate on file events.
type docCache struct {
	mu      sync.RWMutex
	docs    []Document
	fetched time.Time
	ttl     time.Duration
	load    func() ([]Document, error)
}

func newDocCache(ttl time.Duration, load func() ([]Document, error)) *docCache {
	return &docCache{ttl: ttl, load: load}
}

func (c *docCache) valid() bool {
	return c.docs != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh parse.
func (c *docCache) Invalidate() {
	c.mu.Lock()
	c.docs = nil
	c.mu.Unlock()
}

// Documents returns the cached document set, reloading it if stale. It
// takes a read lock first and only upgrades when a reload is needed.
func (c *docCache) Documents() ([]Document, error) {
	c.mu.RLock()
	if c.valid() {
		docs := c.docs
		c.mu.RUnlock()
		return docs, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.docs, nil
	}
	docs, err := c.load()
	if err != nil {
		return nil, err
	}
	c.docs = docs
	c.fetched = time.Now()
	return docs, nil
}

// Drafts returns cached documents marked as drafts, newest first.
func (c *docCache) Drafts() ([]Document, error) {
	docs, err := c.Documents()
	if err != nil {
		return nil, err
	}
	var drafts []Document
	for _, d := range docs {
		if d.Front.Draft {
			drafts = append(drafts, d)
		}
	}
	return drafts, nil
}

// Get returns a cached document by slug.
func (c *docCache) Get(slug string) (Document, bool, error) {
	docs, err := c.Documents()
	if err != nil {
		return Document{}, false, err
	}
	for _, d := range docs {
		if d.Slug == slug {
			return d, true, nil
		}
	}
	return Document{}, false, nil
}
