package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quizhunt-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches an event's questions from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, eventID string) ([]domain.Question, error)
}

// QuestionCache caches question sets with TTL to avoid repeated DB hits.
type QuestionCache struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedSet
	// gens counts invalidations so a load racing one does not store stale data.
	gens map[string]uint64
}

type cachedSet struct {
	set       domain.QuestionSet
	expiresAt time.Time
}

func NewQuestionCache(loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
		gens:   make(map[string]uint64),
	}
}

func (c *QuestionCache) GetQuestions(ctx context.Context, eventID string) (domain.QuestionSet, error) {
	if set, ok := c.lookup(eventID); ok {
		return set, nil
	}

	result, err, _ := c.sf.Do(eventID, func() (interface{}, error) {
		if set, ok := c.lookup(eventID); ok {
			return set, nil
		}
		c.mu.RLock()
		gen := c.gens[eventID]
		c.mu.RUnlock()

		questions, err := c.loader.LoadQuestions(ctx, eventID)
		if err != nil {
			return domain.QuestionSet{}, err
		}
		set := domain.NewQuestionSet(eventID, questions)

		if ttl := c.ttlWithJitter(); ttl > 0 {
			c.mu.Lock()
			if c.gens[eventID] == gen {
				c.cache[eventID] = cachedSet{set: set, expiresAt: c.clock().Add(ttl)}
			}
			c.mu.Unlock()
		}
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

// Invalidate drops the cached set so the next read reloads it.
func (c *QuestionCache) Invalidate(_ context.Context, eventID string) error {
	c.mu.Lock()
	delete(c.cache, eventID)
	c.gens[eventID]++
	c.mu.Unlock()
	c.sf.Forget(eventID)
	return nil
}

func (c *QuestionCache) lookup(eventID string) (domain.QuestionSet, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.cache[eventID]; ok && entry.expiresAt.After(now) {
		return entry.set, true
	}
	return domain.QuestionSet{}, false
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
