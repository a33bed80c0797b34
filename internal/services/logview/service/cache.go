package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"evalview/internal/adapters/remotezip"
	"evalview/internal/modkit/readkit"
	"evalview/internal/platform/logger"
)

const (
	defaultCacheSize = 16
	defaultCacheTTL  = 5 * time.Minute
)

// CacheOptions tunes the archive handle cache
type CacheOptions struct {
	// Size caps how many archive handles stay warm; zero means 16
	Size int

	// TTL expires warm handles so directory state cannot go stale forever;
	// zero means 5m
	TTL time.Duration
}

// handle pairs an open archive with the id its lifecycle logs under
type handle struct {
	a  *remotezip.Archive
	id string
}

// Cache is a readkit.Opener that keeps open archive handles warm, keyed by
// URL. A warm handle is only the parsed central directory; it holds no
// connections or payload bytes
type Cache struct {
	inner readkit.Opener
	lru   *expirable.LRU[string, handle]
	sf    singleflight.Group
	log   logger.Logger
}

// NewCache wraps inner with an expiring LRU of open handles
func NewCache(inner readkit.Opener, opts CacheOptions) *Cache {
	if inner == nil {
		panic("logview.Cache requires a non nil Opener")
	}
	if opts.Size <= 0 {
		opts.Size = defaultCacheSize
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultCacheTTL
	}
	c := &Cache{inner: inner, log: *logger.Named("logview.cache")}
	c.lru = expirable.NewLRU(opts.Size, func(url string, h handle) {
		c.log.Debug().Str("url", url).Str("handle_id", h.id).Msg("archive handle dropped")
	}, opts.TTL)
	return c
}

// Open returns a warm handle when one exists, otherwise opens through the
// inner opener. Concurrent opens of the same URL collapse into one flight;
// the flight detaches from the first caller's cancellation so a departing
// request cannot fail the callers still waiting
func (c *Cache) Open(ctx context.Context, url string) (*remotezip.Archive, error) {
	if h, ok := c.lru.Get(url); ok {
		return h.a, nil
	}

	ch := c.sf.DoChan(url, func() (any, error) {
		a, err := c.inner.Open(context.WithoutCancel(ctx), url)
		if err != nil {
			return nil, err
		}
		h := handle{a: a, id: uuid.NewString()}
		c.lru.Add(url, h)
		c.log.Debug().
			Str("url", url).
			Str("handle_id", h.id).
			Int("entries", a.Len()).
			Msg("archive handle cached")
		return h, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(handle).a, nil
	}
}

// Invalidate drops the warm handle for url, reporting whether one existed
func (c *Cache) Invalidate(url string) bool { return c.lru.Remove(url) }

// Purge drops every warm handle and reports how many were dropped
func (c *Cache) Purge() int {
	n := c.lru.Len()
	c.lru.Purge()
	return n
}

// Len reports how many handles are warm
func (c *Cache) Len() int { return c.lru.Len() }
