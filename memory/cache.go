// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedProvider keeps recent Get results in process memory. Writes for a
// user drop that user's entry. Query is never cached.
type CachedProvider struct {
	next  Provider
	cache *gocache.Cache
}

// NewCachedProvider wraps next with a read cache
func NewCachedProvider(next Provider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedProvider{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedProvider) Add(ctx context.Context, doc Document) error {
	c.cache.Delete(doc.UserID)
	err := c.next.Add(ctx, doc)
	c.cache.Delete(doc.UserID)
	return err
}

func (c *CachedProvider) Get(ctx context.Context, userID string) (*Record, error) {
	if v, found := c.cache.Get(userID); found {
		rec := *v.(*Record)
		return &rec, nil
	}

	rec, err := c.next.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	stored := *rec
	c.cache.SetDefault(userID, &stored)
	return rec, nil
}

func (c *CachedProvider) Update(ctx context.Context, userID, text string, metadata map[string]any) error {
	c.cache.Delete(userID)
	err := c.next.Update(ctx, userID, text, metadata)
	c.cache.Delete(userID)
	return err
}

func (c *CachedProvider) Query(ctx context.Context, userID string, q Query) ([]Match, error) {
	return c.next.Query(ctx, userID, q)
}
