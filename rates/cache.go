package rates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"go-trade-game"
	"golang.org/x/sync/singleflight"
)

// cachingService decorates a rates.Service with a cache of published rates per date.
// Entries expire after ttl; the next lookup after expiry fetches again. Failures are not cached.
// The cachingService is concurrency safe.
type cachingService struct {
	// next the service being decorated with a cache
	next Service

	// cache the cache of rates keyed by searchdate
	cache map[string]entry

	// ttl how long a cached value is served
	ttl time.Duration

	// lock synchronizes access to cache to make it concurrency safe
	lock sync.RWMutex

	// group collapses concurrent fetches of the same date into one upstream call
	group singleflight.Group

	// now clock, replaced in tests
	now func() time.Time

	logger log.Logger
}

type entry struct {
	rates     game.Rates
	fetchedAt time.Time
}

// NewCachingService returns a new caching Service
func NewCachingService(ttl time.Duration, logger log.Logger, s Service) Service {
	return &cachingService{
		next:   s,
		cache:  map[string]entry{},
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// ExchangeRates looks up exchange rates and caches the results
func (s *cachingService) ExchangeRates(ctx context.Context, date time.Time) (game.Rates, error) {
	key := date.Format("20060102")

	s.lock.RLock()
	e, ok := s.cache[key]
	s.lock.RUnlock()

	if ok && s.now().Sub(e.fetchedAt) < s.ttl {
		return e.rates.Clone(), nil
	}
	if ok {
		s.logger.Log("msg", "cached rates expired", "date", key, "fetched_at", e.fetchedAt)
	}

	// the fetch is shared by every waiter, so one caller cancelling must not fail the rest;
	// the source's own client timeout still bounds it
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		rates, err := s.next.ExchangeRates(fetchCtx, date)
		if err != nil {
			return nil, err
		}
		s.lock.Lock()
		defer s.lock.Unlock()
		s.cache[key] = entry{rates: rates, fetchedAt: s.now()}
		return rates, nil
	})
	if err != nil {
		return nil, fmt.Errorf("refreshing cache [%v]: %w", key, err)
	}
	return v.(game.Rates).Clone(), nil
}
