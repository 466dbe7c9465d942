package main

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ReadCache stores guestbook read results until the next write or delete.
// A nil *ReadCache is valid and caches nothing.
type ReadCache struct {
	recent *expirable.LRU[int, []GuestbookEntry]
	pages  *expirable.LRU[string, GuestbookPage]
}

// NewReadCache creates a cache holding up to size results per kind, each
// living at most ttl.
func NewReadCache(size int, ttl time.Duration) (*ReadCache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}
	return &ReadCache{
		recent: expirable.NewLRU[int, []GuestbookEntry](size, nil, ttl),
		pages:  expirable.NewLRU[string, GuestbookPage](size, nil, ttl),
	}, nil
}

func pageKey(page, pageSize int) string {
	return fmt.Sprintf("p%d_s%d", page, pageSize)
}

// GetRecent retrieves the cached newest entries for a limit
func (c *ReadCache) GetRecent(limit int) ([]GuestbookEntry, bool) {
	if c == nil {
		return nil, false
	}
	return c.recent.Get(limit)
}

func (c *ReadCache) SetRecent(limit int, entries []GuestbookEntry) {
	if c == nil {
		return
	}
	c.recent.Add(limit, entries)
}

// GetPage retrieves a cached page
func (c *ReadCache) GetPage(page, pageSize int) (GuestbookPage, bool) {
	if c == nil {
		return GuestbookPage{}, false
	}
	return c.pages.Get(pageKey(page, pageSize))
}

func (c *ReadCache) SetPage(page, pageSize int, p GuestbookPage) {
	if c == nil {
		return
	}
	c.pages.Add(pageKey(page, pageSize), p)
}

// Invalidate drops everything. Every mutation shifts what each page holds.
func (c *ReadCache) Invalidate() {
	if c == nil {
		return
	}
	c.recent.Purge()
	c.pages.Purge()
}
