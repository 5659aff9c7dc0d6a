package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const visitorsKey = "site_stats:visitors"

// VisitorCounter keeps the site-wide visitor count in a single Redis key so
// every instance increments the same number.
type VisitorCounter struct {
	client *redis.Client
}

func NewVisitorCounter(client *redis.Client) *VisitorCounter {
	return &VisitorCounter{client: client}
}

func (v *VisitorCounter) IncrementVisitors(ctx context.Context) (int64, error) {
	return v.client.Incr(ctx, visitorsKey).Result()
}

func (v *VisitorCounter) VisitorCount(ctx context.Context) (int64, error) {
	n, err := v.client.Get(ctx, visitorsKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}
