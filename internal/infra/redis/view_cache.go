package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
)

// ViewCache stores participant question lists in Redis and falls back to the loader on a miss.
// Each list is stored as JSON under: quiz:{quizID}:{revision}:participant
// A non-positive TTL disables caching.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	return &ViewCache{
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ViewCache) GetOrLoad(ctx context.Context, key string, load app.ViewLoader) ([]domain.ParticipantQuestion, error) {
	if c.ttl <= 0 {
		return load(ctx)
	}
	if views, ok := c.read(ctx, key); ok {
		return views, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if views, ok := c.read(ctx, key); ok {
			return views, nil
		}

		views, err := load(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(views)
		if err != nil {
			return nil, fmt.Errorf("marshal participant views: %w", err)
		}
		// best-effort write; a failed SET only costs a future reload
		_ = c.client.Set(ctx, c.redisKey(key), data, c.ttlWithJitter()).Err()
		return views, nil
	})
	if err != nil {
		return nil, err
	}
	// singleflight hands the same slice to every waiter
	return domain.CloneParticipantViews(result.([]domain.ParticipantQuestion)), nil
}

func (c *ViewCache) read(ctx context.Context, key string) ([]domain.ParticipantQuestion, bool) {
	raw, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if err != nil {
		// redis.Nil is a plain miss; other errors degrade to loading from the store
		return nil, false
	}
	var views []domain.ParticipantQuestion
	if err := json.Unmarshal(raw, &views); err != nil {
		return nil, false
	}
	return views, true
}

func (c *ViewCache) redisKey(key string) string {
	return "quiz:" + key + ":participant"
}

func (c *ViewCache) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
