package raster

import "sync"

// Cache provides thread-safe caching of decoded rasters to avoid redundant disk reads.
//
// Entries are keyed by the absolute, cleaned path and the expected dimensions, so
// the same file requested with different expectations is decoded (and
// validated) separately. Cached images are shared: callers must Clone before
// mutating one.
//
// # Memory Management
//
// Cached rasters remain in memory until explicitly removed via Evict() or
// Clear(). Writers of a path should Evict it so later loads see the new contents.
type Cache struct {
	mu     sync.RWMutex
	images map[cacheKey]*Image
}

type cacheKey struct {
	path string
	dims Dims
}

// NewCache creates an empty raster cache.
func NewCache() *Cache {
	return &Cache{
		images: make(map[cacheKey]*Image),
	}
}

// Load returns the raster at path from the cache, decoding it with LoadFile on a miss.
//
// Failed loads are not cached.
func (c *Cache) Load(path string, want Dims) (*Image, error) {
	key := cacheKey{path: canonicalPath(path), dims: want}

	c.mu.RLock()
	if img, ok := c.images[key]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := LoadFile(path, want)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[key] = img
	c.mu.Unlock()

	return img, nil
}

// Evict removes every cached entry for path, whatever dimensions it was loaded with.
func (c *Cache) Evict(path string) {
	path = canonicalPath(path)
	c.mu.Lock()
	for k := range c.images {
		if k.path == path {
			delete(c.images, k)
		}
	}
	c.mu.Unlock()
}

// Clear removes all rasters from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.images = make(map[cacheKey]*Image)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}
