package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store owns the connection pool to the document database. Each collection
// lives in its own table; opaque sub-documents (address, timeline, notes,
// payload) are JSONB and every mutation is a single-row statement. There are
// no cross-collection transactions in the request path.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}
