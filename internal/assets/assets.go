// Package assets fetches remote model and texture bytes.
package assets

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// MaxBody bounds a single download.
const MaxBody = 64 << 20

// Default Cache limits.
const (
	DefaultCacheEntries = 32
	DefaultCacheBytes   = 128 << 20
)

// ErrTooLarge is returned for a body over the download limit.
var ErrTooLarge = errors.New("asset too large")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// Resource is a fetched body with its declared content type.
type Resource struct {
	Data        []byte
	ContentType string
}

// Manager downloads assets over HTTP. Model bytes are cached by URL; the
// URL carries the asset version, so a version bump misses the cache.
type Manager struct {
	http    *http.Client
	timeout time.Duration
	maxBody int64
	cache   *Cache
}

// NewManager creates a manager. A nil client uses http.DefaultClient.
func NewManager(client *http.Client, timeout time.Duration) *Manager {
	if client == nil {
		client = http.DefaultClient
	}
	return &Manager{
		http:    client,
		timeout: timeout,
		maxBody: MaxBody,
		cache:   NewCache(),
	}
}

// Cache returns the byte cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Load returns the body at url, from cache when possible.
func (m *Manager) Load(ctx context.Context, url string) ([]byte, error) {
	if data, ok := m.cache.Get(url); ok {
		return data, nil
	}

	res, err := m.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	m.cache.Set(url, res.Data)
	return res.Data, nil
}

// Fetch downloads url without caching.
func (m *Manager) Fetch(ctx context.Context, url string) (*Resource, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, m.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(data)) > m.maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, url, m.maxBody)
	}
	return &Resource{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// Cache is an in-memory LRU for downloaded assets, bounded by entry count
// and total bytes.
type Cache struct {
	maxEntries int
	maxBytes   int

	mu    sync.Mutex
	order *list.List // front is most recent
	items map[string]*list.Element
	bytes int

	// Stats
	hits   int
	misses int
}

type cacheEntry struct {
	key  string
	data []byte
}

// NewCache creates a cache with the default limits.
func NewCache() *Cache {
	return NewCacheSize(DefaultCacheEntries, DefaultCacheBytes)
}

// NewCacheSize creates a cache holding at most maxEntries items and
// maxBytes bytes. A non-positive limit is not enforced.
func NewCacheSize(maxEntries, maxBytes int) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
		order:      list.New(),
		items:      make(map[string]*list.Element),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).data, true
}

// Set stores an item in cache, evicting the least recently used items
// beyond the limits. An item larger than maxBytes is not stored.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
	if c.maxBytes > 0 && len(data) > c.maxBytes {
		return
	}
	c.items[key] = c.order.PushFront(&cacheEntry{key: key, data: data})
	c.bytes += len(data)

	for c.order.Len() > 0 && c.over() {
		c.remove(c.order.Back())
	}
}

func (c *Cache) over() bool {
	return (c.maxEntries > 0 && c.order.Len() > c.maxEntries) ||
		(c.maxBytes > 0 && c.bytes > c.maxBytes)
}

func (c *Cache) remove(el *list.Element) {
	e := c.order.Remove(el).(*cacheEntry)
	delete(c.items, e.key)
	c.bytes -= len(e.data)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Size returns the total cached bytes.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	clear(c.items)
	c.bytes = 0
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
