// Package memory provides the in-process TTL cache backing the rate set
// memoization.
package memory

import (
	"time"

	"github.com/fxmirror/fxmirror/internal/core/domain"
	"github.com/fxmirror/fxmirror/internal/core/ports"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long a reconciled rate set stays fresh.
const DefaultTTL = 24 * time.Hour

const rateSetKey = "currencies:active"

// RateSetCache stores the single reconciled rate set entry with a TTL.
type RateSetCache struct {
	ttl   time.Duration
	store *gocache.Cache
}

// NewRateSetCache creates the cache with the given time-to-live.
func NewRateSetCache(ttl time.Duration) *RateSetCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RateSetCache{
		ttl:   ttl,
		store: gocache.New(ttl, 2*ttl),
	}
}

var _ ports.RateSetCache = (*RateSetCache)(nil)

// Get returns the cached rate set if present and unexpired.
func (c *RateSetCache) Get() ([]domain.Currency, bool) {
	v, ok := c.store.Get(rateSetKey)
	if !ok {
		return nil, false
	}
	set, ok := v.([]domain.Currency)
	return set, ok
}

// Set stores the rate set for the configured TTL.
func (c *RateSetCache) Set(currencies []domain.Currency) {
	c.store.Set(rateSetKey, currencies, c.ttl)
}

// Invalidate drops the cached rate set unconditionally.
func (c *RateSetCache) Invalidate() {
	c.store.Delete(rateSetKey)
}
