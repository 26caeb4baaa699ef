package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
)

// ViewCache keeps participant question lists in process memory with a TTL.
// A non-positive TTL disables caching. Every caller gets its own copy of the views.
type ViewCache struct {
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedViews
}

type cachedViews struct {
	views     []domain.ParticipantQuestion
	expiresAt time.Time
}

func NewViewCache(ttl time.Duration) *ViewCache {
	return NewViewCacheWithClock(ttl, time.Now)
}

// NewViewCacheWithClock allows tests to control expiry.
func NewViewCacheWithClock(ttl time.Duration, now func() time.Time) *ViewCache {
	return &ViewCache{
		ttl:   ttl,
		clock: now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedViews),
	}
}

func (c *ViewCache) GetOrLoad(ctx context.Context, key string, load app.ViewLoader) ([]domain.ParticipantQuestion, error) {
	if c.ttl <= 0 {
		return load(ctx)
	}
	if views, ok := c.lookup(key); ok {
		return views, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// another caller may have filled it while we waited
		if views, ok := c.lookup(key); ok {
			return views, nil
		}

		views, err := load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.evictExpiredLocked(c.clock())
		c.cache[key] = cachedViews{
			views:     domain.CloneParticipantViews(views),
			expiresAt: c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return views, nil
	})
	if err != nil {
		return nil, err
	}
	// singleflight hands the same slice to every waiter
	return domain.CloneParticipantViews(result.([]domain.ParticipantQuestion)), nil
}

// Len reports how many entries are cached, expired ones included.
func (c *ViewCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *ViewCache) lookup(key string) ([]domain.ParticipantQuestion, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return domain.CloneParticipantViews(entry.views), true
}

func (c *ViewCache) evictExpiredLocked(now time.Time) {
	for k, entry := range c.cache {
		if !entry.expiresAt.After(now) {
			delete(c.cache, k)
		}
	}
}

func (c *ViewCache) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
