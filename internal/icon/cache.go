// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package icon

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/wneessen/daily-forecast/internal/logger"
)

const resultBuffer = 32

// Request identifies the row that asked for an icon. Generation is the forecast generation the
// row belongs to, so that late results for replaced rows can be dropped by the consumer.
type Request struct {
	Locator    string
	Row        int
	Generation uint64
}

// Result is posted for every request that missed the cache.
type Result struct {
	Request
	Image image.Image
	Err   error
}

// Stats holds the cache counters
type Stats struct {
	Hits    int64
	Misses  int64
	Fetches int64
}

// Cache is a bounded LRU cache of decoded icons keyed by locator. Concurrent misses for the same
// locator share a single fetch, and the number of fetches running at the same time is limited.
type Cache struct {
	fetcher Fetcher
	log     *logger.Logger
	store   *lru.Cache[string, image.Image]
	group   singleflight.Group
	sem     *semaphore.Weighted
	results chan Result

	hits    atomic.Int64
	misses  atomic.Int64
	fetches atomic.Int64
}

// New returns a Cache that holds up to size icons and runs at most concurrency fetches at once.
func New(fetcher Fetcher, log *logger.Logger, size, concurrency int) (*Cache, error) {
	if fetcher == nil {
		return nil, errors.New("icon fetcher is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("invalid fetch concurrency: %d", concurrency)
	}
	store, err := lru.New[string, image.Image](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon LRU cache: %w", err)
	}

	return &Cache{
		fetcher: fetcher,
		log:     log,
		store:   store,
		sem:     semaphore.NewWeighted(int64(concurrency)),
		results: make(chan Result, resultBuffer),
	}, nil
}

// Results returns the channel the results of asynchronous fetches are posted to
func (c *Cache) Results() <-chan Result {
	return c.results
}

// Get returns the cached icon for the request's locator. On a miss it starts an asynchronous
// fetch, returns false, and posts a Result once the fetch has completed.
func (c *Cache) Get(ctx context.Context, req Request) (image.Image, bool) {
	if img, ok := c.store.Get(req.Locator); ok {
		c.hits.Add(1)
		return img, true
	}
	c.misses.Add(1)
	go c.load(ctx, req)
	return nil, false
}

// Len returns the number of cached icons
func (c *Cache) Len() int {
	return c.store.Len()
}

// Stats returns the current cache counters
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Fetches: c.fetches.Load(),
	}
}

func (c *Cache) load(ctx context.Context, req Request) {
	val, err, shared := c.group.Do(req.Locator, func() (any, error) {
		if img, ok := c.store.Peek(req.Locator); ok {
			return img, nil
		}
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetch, err)
		}
		defer c.sem.Release(1)

		c.fetches.Add(1)
		img, err := c.fetcher.Fetch(ctx, req.Locator)
		if err != nil {
			if !errors.Is(err, ErrFetch) {
				err = fmt.Errorf("%w: %w", ErrFetch, err)
			}
			return nil, err
		}
		if img == nil {
			return nil, fmt.Errorf("%w: empty image", ErrFetch)
		}
		c.store.Add(req.Locator, img)
		return img, nil
	})

	res := Result{Request: req, Err: err}
	if err != nil {
		c.log.Warn("failed to load icon", slog.String("locator", req.Locator), logger.Err(err))
	} else {
		res.Image, _ = val.(image.Image)
		c.log.Debug("icon loaded", slog.String("locator", req.Locator), slog.Bool("shared", shared))
	}

	select {
	case c.results <- res:
	case <-ctx.Done():
	}
}
