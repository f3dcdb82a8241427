package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"quizhunt-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches an event's questions from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, eventID string) ([]domain.Question, error)
}

var errStaleLoad = errors.New("question set changed during load")

// QuestionCache caches question sets in Redis (hash per event) and falls back to a
// loader on cache miss.
// Questions are stored as: HSET event:{eventID}:questions {level} {question JSON}
// Invalidations count in: INCR event:{eventID}:questions:gen
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	logger *slog.Logger
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: slog.Default(),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) GetQuestions(ctx context.Context, eventID string) (domain.QuestionSet, error) {
	key := questionsKey(eventID)

	if set, ok := c.fromCache(ctx, key, eventID); ok {
		return set, nil
	}

	result, err, _ := c.sf.Do(eventID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if set, ok := c.fromCache(ctx, key, eventID); ok {
			return set, nil
		}

		gen, genErr := c.generation(ctx, eventID)
		questions, err := c.loader.LoadQuestions(ctx, eventID)
		if err != nil {
			return domain.QuestionSet{}, err
		}
		switch {
		case genErr != nil:
			c.logger.Warn("question cache generation read failed", "event_id", eventID, "error", genErr)
		case len(questions) > 0:
			if err := c.store(ctx, eventID, gen, questions); err != nil {
				c.logger.Warn("question cache write failed", "event_id", eventID, "error", err)
			}
		}

		return domain.NewQuestionSet(eventID, questions), nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

// store writes the loaded set only if no Invalidate ran since gen was read.
func (c *QuestionCache) store(ctx context.Context, eventID string, gen int64, questions []domain.Question) error {
	key, genKey := questionsKey(eventID), generationKey(eventID)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, q := range questions {
				raw, err := json.Marshal(q)
				if err != nil {
					return fmt.Errorf("encode question: %w", err)
				}
				pipe.HSet(ctx, key, strconv.Itoa(q.Level), raw)
			}
			if ttl := c.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, errStaleLoad) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

func (c *QuestionCache) generation(ctx context.Context, eventID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(eventID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Invalidate deletes the cached hash and bumps the event's generation so loads already
// in flight do not write their result back.
func (c *QuestionCache) Invalidate(ctx context.Context, eventID string) error {
	c.sf.Forget(eventID)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, generationKey(eventID))
	pipe.Del(ctx, questionsKey(eventID))
	_, err := pipe.Exec(ctx)
	return err
}

func (c *QuestionCache) fromCache(ctx context.Context, key, eventID string) (domain.QuestionSet, bool) {
	fields, err := c.client.HGetAll(ctx, key).Result()
	if err != nil || len(fields) == 0 {
		return domain.QuestionSet{}, false
	}
	questions := make([]domain.Question, 0, len(fields))
	for _, raw := range fields {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return domain.QuestionSet{}, false
		}
		questions = append(questions, q)
	}
	return domain.NewQuestionSet(eventID, questions), true
}

func questionsKey(eventID string) string {
	return "event:" + eventID + ":questions"
}

// generationKey has no TTL: a reset counter could match a stale load's generation.
func generationKey(eventID string) string {
	return questionsKey(eventID) + ":gen"
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
