package wfm

import (
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// orderCacheTTL bounds how long a fetched order book is reused. Order books
// churn fast, so this only shields bursts (pack valuation touches the same
// arcane from several tiers).
const orderCacheTTL = 90 * time.Second

// orderCacheEntry holds one item's cached order book.
type orderCacheEntry struct {
	orders  []Order
	fetched time.Time
}

// OrderCache is a thread-safe in-memory cache of per-item order books.
// A singleflight.Group prevents duplicate in-flight fetches for the same slug.
type OrderCache struct {
	mu      sync.RWMutex
	entries map[string]*orderCacheEntry
	group   singleflight.Group
}

// NewOrderCache creates an empty order cache.
func NewOrderCache() *OrderCache {
	return &OrderCache{
		entries: make(map[string]*orderCacheEntry),
	}
}

// Get returns cached orders for a slug if they have not expired.
func (oc *OrderCache) Get(slug string) ([]Order, bool) {
	oc.mu.RLock()
	defer oc.mu.RUnlock()

	e, ok := oc.entries[slug]
	if !ok {
		return nil, false
	}
	if time.Since(e.fetched) > orderCacheTTL {
		return nil, false
	}
	return e.orders, true
}

// Put stores a freshly fetched order book.
func (oc *OrderCache) Put(slug string, orders []Order) {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	oc.entries[slug] = &orderCacheEntry{orders: orders, fetched: time.Now()}
}

// Orders returns the order book for an item, fetching it at most once per
// TTL window:
//  1. Cache hit → instant return, no network I/O.
//  2. Miss → fetch, populate cache. Concurrent callers for the same slug
//     are coalesced through singleflight and share one fetch.
func (c *Client) Orders(slug string) ([]Order, error) {
	if orders, ok := c.orderCache.Get(slug); ok {
		return orders, nil
	}

	result, err, _ := c.orderCache.group.Do(slug, func() (interface{}, error) {
		// Re-check under the flight: a racing caller may have populated it.
		if orders, ok := c.orderCache.Get(slug); ok {
			return orders, nil
		}
		orders, err := c.FetchOrders(slug)
		if err != nil {
			return nil, err
		}
		c.orderCache.Put(slug, orders)
		log.Printf("[WFM] OrderCache MISS slug=%s (%d orders)", slug, len(orders))
		return orders, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Order), nil
}
