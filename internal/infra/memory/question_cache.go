package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// QuestionCache keeps each game's canonical questions with a TTL so a burst of
// players fetching the same game hits the store once. Questions are immutable
// after creation, so the only invalidation needed is Forget on deletion.
// Every Forget bumps a generation; a fill that started before it drops its write.
type QuestionCache struct {
	source app.QuestionSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedQuestions
	gen   uint64
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(source app.QuestionSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuestions),
	}
}

// ListQuestions returns a copy the caller may reorder freely.
func (c *QuestionCache) ListQuestions(ctx context.Context, gameID string) ([]domain.Question, error) {
	if qs, ok := c.lookup(gameID); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(gameID, func() (interface{}, error) {
		if qs, ok := c.lookup(gameID); ok {
			return qs, nil
		}

		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		qs, err := c.source.ListQuestions(ctx, gameID)
		if err != nil {
			return nil, err
		}
		// An empty list may mean the game is not written yet; don't pin it.
		if len(qs) == 0 {
			return qs, nil
		}

		c.mu.Lock()
		if c.gen == gen {
			c.cache[gameID] = cachedQuestions{
				questions: cloneQuestions(qs),
				expiresAt: c.clock().Add(c.ttlWithJitterLocked()),
			}
		}
		c.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.Question)), nil
}

func (c *QuestionCache) lookup(gameID string) ([]domain.Question, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[gameID]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return cloneQuestions(entry.questions), true
}

func (c *QuestionCache) Forget(_ context.Context, gameID string) error {
	c.mu.Lock()
	delete(c.cache, gameID)
	c.gen++
	c.mu.Unlock()
	c.sf.Forget(gameID)
	return nil
}

func (c *QuestionCache) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func cloneQuestions(qs []domain.Question) []domain.Question {
	out := make([]domain.Question, len(qs))
	for i, q := range qs {
		out[i] = cloneQuestion(q)
	}
	return out
}
