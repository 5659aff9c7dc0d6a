package cli

import (
	"context"
	"fmt"
	"log"

	"trivia-service/internal/app"
	"trivia-service/internal/config"
	"trivia-service/internal/infra/memory"
	"trivia-service/internal/infra/postgres"
	redisinfra "trivia-service/internal/infra/redis"
	"trivia-service/internal/infra/sqlite"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// backend bundles the stores chosen by configuration.
type backend struct {
	games    app.GameRepository
	players  app.PlayerRepository
	visitors app.VisitorCounter
	cache    app.QuestionCache
	closers  []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}

	switch driver := cfg.Driver(); driver {
	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		store := postgres.NewStore(pool)
		b.games, b.players, b.visitors = store, store, store
	case config.DriverSQLite:
		store, err := sqlite.NewStore(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = store.Close() })
		b.games, b.players, b.visitors = store, store, store
	case config.DriverMemory:
		store := memory.NewStore()
		b.games, b.players = store, store
		b.visitors = memory.NewVisitorCounter()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
	log.Printf("storage driver: %s", cfg.Driver())

	ttl := cfg.CacheTTL()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			b.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.cache = redisinfra.NewQuestionCache(client, b.games, ttl)
		// The in-memory counter is per process; share it through Redis instead.
		if cfg.Driver() == config.DriverMemory {
			b.visitors = redisinfra.NewVisitorCounter(client)
		}
	} else {
		b.cache = memory.NewQuestionCache(b.games, ttl)
	}
	return b, nil
}
