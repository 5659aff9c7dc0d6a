package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// IncrementVisitors upserts and bumps the singleton row in one statement.
func (s *Store) IncrementVisitors(ctx context.Context) (int64, error) {
	var visitors int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO site_stats (id, visitors, updated_at_unix_nano) VALUES ('main', 1, ?)
		 ON CONFLICT (id) DO UPDATE SET visitors = visitors + 1, updated_at_unix_nano = excluded.updated_at_unix_nano
		 RETURNING visitors`, time.Now().UnixNano()).Scan(&visitors)
	if err != nil {
		return 0, fmt.Errorf("increment visitors: %w", err)
	}
	return visitors, nil
}

func (s *Store) VisitorCount(ctx context.Context) (int64, error) {
	var visitors int64
	err := s.db.QueryRowContext(ctx, `SELECT visitors FROM site_stats WHERE id = 'main'`).Scan(&visitors)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("visitor count: %w", err)
	}
	return visitors, nil
}
