package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionCache shares each game's canonical questions across instances.
// Questions are stored as one JSON value: SET game:{gameID}:questions [...]
// Forget leaves a marker at game:{gameID}:deleted; fills WATCH it and skip
// the write once it exists, so a load racing a deletion cannot repopulate.
type QuestionCache struct {
	client *redis.Client
	source app.QuestionSource
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, source app.QuestionSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) ListQuestions(ctx context.Context, gameID string) ([]domain.Question, error) {
	if qs, ok := c.lookup(ctx, gameID); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(gameID, func() (interface{}, error) {
		// Re-check cache in case another instance filled it.
		if qs, ok := c.lookup(ctx, gameID); ok {
			return qs, nil
		}

		qs, err := c.source.ListQuestions(ctx, gameID)
		if err != nil {
			return nil, err
		}
		if len(qs) == 0 {
			return qs, nil
		}

		// Cache writes are best effort; the source stays authoritative.
		if data, err := json.Marshal(qs); err == nil {
			_ = c.store(ctx, gameID, data)
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}

	// singleflight shares the slice between callers; hand each one its own.
	shared := result.([]domain.Question)
	out := make([]domain.Question, len(shared))
	for i, q := range shared {
		q.Options = append([]domain.Option(nil), q.Options...)
		out[i] = q
	}
	return out, nil
}

func (c *QuestionCache) lookup(ctx context.Context, gameID string) ([]domain.Question, bool) {
	data, err := c.client.Get(ctx, c.key(gameID)).Bytes()
	if err != nil {
		return nil, false
	}
	var qs []domain.Question
	if err := json.Unmarshal(data, &qs); err != nil || len(qs) == 0 {
		return nil, false
	}
	return qs, true
}

// store writes data unless the game was forgotten, in the same WATCH/MULTI
// round. A concurrent Forget aborts the transaction.
func (c *QuestionCache) store(ctx context.Context, gameID string, data []byte) error {
	marker := c.deletedKey(gameID)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		deleted, err := tx.Exists(ctx, marker).Result()
		if err != nil || deleted > 0 {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(gameID), data, c.ttlWithJitter())
			return nil
		})
		return err
	}, marker)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

func (c *QuestionCache) Forget(ctx context.Context, gameID string) error {
	c.sf.Forget(gameID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.deletedKey(gameID), "1", c.markerTTL())
		pipe.Del(ctx, c.key(gameID))
		return nil
	})
	return err
}

func (c *QuestionCache) key(gameID string) string {
	return "game:" + gameID + ":questions"
}

func (c *QuestionCache) deletedKey(gameID string) string {
	return "game:" + gameID + ":deleted"
}

// markerTTL outlives any fill that could have started before the deletion.
func (c *QuestionCache) markerTTL() time.Duration {
	if ttl := 2 * c.ttl; ttl > time.Hour {
		return ttl
	}
	return time.Hour
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
