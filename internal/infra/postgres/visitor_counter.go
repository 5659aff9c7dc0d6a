package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
)

// IncrementVisitors upserts the singleton row and bumps it in one statement.
func (s *Store) IncrementVisitors(ctx context.Context) (int64, error) {
	var visitors int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO site_stats (id, visitors, updated_at) VALUES ('main', 1, now())
		 ON CONFLICT (id) DO UPDATE SET visitors = site_stats.visitors + 1, updated_at = now()
		 RETURNING visitors`).Scan(&visitors)
	if err != nil {
		return 0, fmt.Errorf("increment visitors: %w", err)
	}
	return visitors, nil
}

func (s *Store) VisitorCount(ctx context.Context) (int64, error) {
	var visitors int64
	err := s.pool.QueryRow(ctx, `SELECT visitors FROM site_stats WHERE id = 'main'`).Scan(&visitors)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("visitor count: %w", err)
	}
	return visitors, nil
}
