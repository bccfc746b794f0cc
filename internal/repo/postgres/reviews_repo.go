package postgres

import (
	"context"

	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/review"
	"github.com/geocoder89/campushub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewReviewsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ReviewsRepo {
	return &ReviewsRepo{pool: pool, prom: prom}
}

func (r *ReviewsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create relies on reviews_user_resource_uniq for the one-review rule.
func (r *ReviewsRepo) Create(ctx context.Context, rv review.Review) (review.Review, error) {
	err := r.observe("reviews.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO reviews (id, user_id, resource_id, rating, comment, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			rv.ID, rv.UserID, rv.ResourceID, rv.Rating, rv.Comment, rv.CreatedAt,
		)
		return err
	})

	if err != nil {
		switch {
		case IsUniqueViolation(err):
			return review.Review{}, review.ErrAlreadyReviewed
		case IsForeignKeyViolation(err):
			return review.Review{}, resource.ErrNotFound
		}
		return review.Review{}, err
	}
	return rv, nil
}

// ListByResource returns reviews newest first.
func (r *ReviewsRepo) ListByResource(ctx context.Context, resourceID string) ([]review.Review, error) {
	var rows pgx.Rows

	err := r.observe("reviews.list_by_resource", func() error {
		var err error
		rows, err = r.pool.Query(ctx, `
			SELECT id, user_id, resource_id, rating, comment, created_at
			FROM reviews
			WHERE resource_id = $1
			ORDER BY created_at DESC, id ASC`, resourceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]review.Review, 0)
	for rows.Next() {
		var rv review.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ResourceID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *ReviewsRepo) Summary(ctx context.Context, resourceID string) (review.Summary, error) {
	var s review.Summary

	err := r.observe("reviews.summary", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT COUNT(*), COALESCE(ROUND(AVG(rating)::numeric, 1), 0)::float8
			FROM reviews
			WHERE resource_id = $1`, resourceID).Scan(&s.Count, &s.AverageRating)
	})

	return s, err
}
