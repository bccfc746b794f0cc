package http

import (
	"log/slog"

	"github.com/geocoder89/campushub/internal/auth"
	"github.com/geocoder89/campushub/internal/cache"
	"github.com/geocoder89/campushub/internal/config"
	"github.com/geocoder89/campushub/internal/lifecycle"
	"github.com/geocoder89/campushub/internal/observability"
	"github.com/geocoder89/campushub/internal/repo/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDeps wires every API dependency against one connection pool.
// prom and c may be nil.
func PostgresDeps(cfg config.Config, pool *pgxpool.Pool, prom *observability.Prom, c cache.Store, log *slog.Logger) Deps {
	opts := []lifecycle.Option{lifecycle.WithLogger(log)}
	if prom != nil {
		opts = append(opts, lifecycle.WithMetrics(prom))
	}

	return Deps{
		Config: cfg,
		Prom:   prom,
		DB:     pool,

		JWT:      auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL),
		Sessions: auth.NewSessions(cfg.SessionSecret, cfg.RefreshTTL, cfg.IsProduction()),
		Cache:    c,

		Manager:   lifecycle.NewManager(postgres.NewBookingStore(pool, prom), opts...),
		Users:     postgres.NewUsersRepo(pool, prom),
		Refresh:   postgres.NewRefreshTokensRepo(pool, prom),
		Resources: postgres.NewResourcesRepo(pool, prom),
		Bookings:  postgres.NewBookingsRepo(pool, prom),
		Messages:  postgres.NewMessagesRepo(pool, prom),
		Reviews:   postgres.NewReviewsRepo(pool, prom),
		Jobs:      postgres.NewJobsRepo(pool, prom),
	}
}
