package collector

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"StockBoard/internal/model"
)

// entry stores cached bars for a single query with expiry.
type entry struct {
	expiresAt time.Time
	bars      []model.OHLCV
}

// CachingFetcher memoizes results per (symbol, period, interval) for a TTL.
// Concurrent identical queries share one upstream call. Errors are not cached.
type CachingFetcher struct {
	F   Fetcher
	TTL time.Duration
	Now func() time.Time

	mu    sync.RWMutex
	items map[string]entry
	group singleflight.Group
}

// NewCachingFetcher wraps f. A non-positive ttl disables caching.
func NewCachingFetcher(f Fetcher, ttl time.Duration) *CachingFetcher {
	return &CachingFetcher{F: f, TTL: ttl, Now: time.Now, items: make(map[string]entry)}
}

func (c *CachingFetcher) Name() string { return c.F.Name() }

func cacheKey(symbol string, period model.Period, interval model.Interval) string {
	return symbol + "|" + string(period) + "|" + string(interval)
}

func (c *CachingFetcher) FetchHistory(ctx context.Context, symbol string, period model.Period, interval model.Interval) ([]model.OHLCV, error) {
	if c.TTL <= 0 {
		return c.F.FetchHistory(ctx, symbol, period, interval)
	}

	key := cacheKey(symbol, period, interval)
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if ok && c.Now().Before(e.expiresAt) {
		return e.bars, nil
	}

	// The shared load is detached from the caller that started it, so one
	// cancelled request cannot fail the others waiting on the same key.
	ch := c.group.DoChan(key, func() (interface{}, error) {
		bars, err := c.F.FetchHistory(context.WithoutCancel(ctx), symbol, period, interval)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items[key] = entry{expiresAt: c.Now().Add(c.TTL), bars: bars}
		c.mu.Unlock()
		return bars, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.OHLCV), nil
	}
}

// Purge drops expired entries and returns how many were removed.
func (c *CachingFetcher) Purge() int {
	now := c.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

// Len reports the number of cached queries, expired or not.
func (c *CachingFetcher) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
