// Package fingerprint keeps the last ingested feed validator per URL.
// The cache lives for the process lifetime: a fresh process starts empty
// and re-ingests every source on its first run.
package fingerprint

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/kailas-cloud/propsync/internal/domain/source"
)

// DefaultSize bounds the cache when config leaves it unset.
const DefaultSize = 256

// Cache is a bounded, concurrency-safe URL to fingerprint map.
type Cache struct {
	lru *lru.Cache
}

// New creates a cache holding at most size entries.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create fingerprint cache: %w", err)
	}
	return &Cache{lru: c}, nil
}

// Get returns the fingerprint recorded for url.
func (c *Cache) Get(url string) (source.Fingerprint, bool) {
	v, ok := c.lru.Get(url)
	if !ok {
		return source.Fingerprint{}, false
	}
	fp, ok := v.(source.Fingerprint)
	return fp, ok
}

// Record replaces the fingerprint for url.
func (c *Cache) Record(url string, fp source.Fingerprint) {
	c.lru.Add(url, fp)
}

// Len returns the number of cached fingerprints.
func (c *Cache) Len() int { return c.lru.Len() }
