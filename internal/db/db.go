package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type poolSettings struct {
	appName  string
	maxConns int32
}

type PoolOption func(*poolSettings)

// WithApplicationName shows up in pg_stat_activity, which is how the api
// and worker connections are told apart.
func WithApplicationName(name string) PoolOption {
	return func(s *poolSettings) { s.appName = name }
}

func WithMaxConns(n int32) PoolOption {
	return func(s *poolSettings) {
		if n > 0 {
			s.maxConns = n
		}
	}
}

// NewPool connects and pings. Sessions run in UTC so booking timestamps
// compare the same way in SQL and in Go.
func NewPool(ctx context.Context, dbURL string, opts ...PoolOption) (*pgxpool.Pool, error) {
	s := poolSettings{appName: "campushub", maxConns: 10}
	for _, o := range opts {
		o(&s)
	}

	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = s.maxConns
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.ConnConfig.RuntimeParams["timezone"] = "UTC"
	cfg.ConnConfig.RuntimeParams["application_name"] = s.appName

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
