package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/campushub/internal/config"
	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/geocoder89/campushub/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser creates the configured admin account once. An existing
// account with that email is left untouched.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) (created bool, err error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	var dummy string
	err = pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&dummy)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,TRUE,$7,$7)
		ON CONFLICT (email) DO NOTHING`,
		uuid.NewString(), email, hash, cfg.AdminFirstName, cfg.AdminLastName, string(user.RoleAdmin), now,
	)
	if err != nil {
		return false, err
	}
	return true, nil
}
