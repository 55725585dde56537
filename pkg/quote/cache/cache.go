// Package cache wraps a core.QuoteSource with a per-symbol TTL cache.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/raykavin/coinalert/pkg/core"
)

// entry stores the cached quote of a single symbol with expiry.
type entry struct {
	expiresAt time.Time
	quote     core.Quote
}

// Source caches successful quotes per symbol for a TTL. Failures are never cached.
type Source struct {
	source core.QuoteSource
	ttl    time.Duration
	clock  func() time.Time

	mu    sync.RWMutex
	items map[core.Symbol]entry
}

var _ core.QuoteSource = (*Source)(nil)

// New wraps source. A non-positive ttl returns source unchanged.
func New(source core.QuoteSource, ttl time.Duration) core.QuoteSource {
	if ttl <= 0 {
		return source
	}
	return newSource(source, ttl, time.Now)
}

func newSource(source core.QuoteSource, ttl time.Duration, clock func() time.Time) *Source {
	return &Source{
		source: source,
		ttl:    ttl,
		clock:  clock,
		items:  make(map[core.Symbol]entry),
	}
}

func (c *Source) Name() string { return c.source.Name() }

// FetchQuote returns the cached quote when still valid, otherwise asks the wrapped source.
func (c *Source) FetchQuote(ctx context.Context, symbol core.Symbol) (core.Quote, error) {
	now := c.clock()

	c.mu.RLock()
	e, ok := c.items[symbol]
	c.mu.RUnlock()
	if ok && now.Before(e.expiresAt) {
		return e.quote, nil
	}

	quote, err := c.source.FetchQuote(ctx, symbol)
	if err != nil {
		return core.Quote{}, err
	}

	c.mu.Lock()
	c.items[symbol] = entry{expiresAt: now.Add(c.ttl), quote: quote}
	// drop expired entries so the map stays bounded by the registry size
	for sym, item := range c.items {
		if !now.Before(item.expiresAt) {
			delete(c.items, sym)
		}
	}
	c.mu.Unlock()

	return quote, nil
}
