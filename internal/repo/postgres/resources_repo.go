package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResourcesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewResourcesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ResourcesRepo {
	return &ResourcesRepo{pool: pool, prom: prom}
}

func (r *ResourcesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ResourcesRepo) Create(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	err := r.observe("resources.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO resources (id, name, description, resource_type, location, capacity,
				hourly_rate, is_available, owner_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			res.ID, res.Name, res.Description, string(res.Type), res.Location, res.Capacity,
			res.HourlyRate, res.IsAvailable, res.OwnerID, res.CreatedAt, res.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return resource.Resource{}, err
	}
	return res, nil
}

func (r *ResourcesRepo) GetByID(ctx context.Context, id string) (resource.Resource, error) {
	var res resource.Resource

	err := r.observe("resources.get_by_id", func() error {
		var err error
		res, err = scanResource(r.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resource.Resource{}, resource.ErrNotFound
		}
		return resource.Resource{}, err
	}
	return res, nil
}

// List returns one page of resources ordered by name, with the total match
// count computed in the same query.
func (r *ResourcesRepo) List(ctx context.Context, f resource.ListFilter) ([]resource.Resource, int, error) {
	var (
		conds []string
		args  []any
		pos   = 1
	)

	if f.OnlyAvailable {
		conds = append(conds, "is_available = TRUE")
	}

	if f.Type != nil {
		conds = append(conds, fmt.Sprintf("resource_type = $%d", pos))
		args = append(args, string(*f.Type))
		pos++
	}

	if f.Search != nil && strings.TrimSpace(*f.Search) != "" {
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)", pos, pos, pos))
		args = append(args, "%"+escapeLike(strings.TrimSpace(*f.Search))+"%")
		pos++
	}

	query := `SELECT ` + resourceColumns + `, COUNT(*) OVER() AS total FROM resources`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY name ASC, id ASC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.PerPage, f.Offset())

	var rows pgx.Rows

	err := r.observe("resources.list", func() error {
		var err error
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]resource.Resource, 0, f.PerPage)
	total := 0

	for rows.Next() {
		var res resource.Resource
		var typ string

		if err := rows.Scan(
			&res.ID, &res.Name, &res.Description, &typ, &res.Location, &res.Capacity,
			&res.HourlyRate, &res.IsAvailable, &res.OwnerID, &res.CreatedAt, &res.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, err
		}
		res.Type = resource.Type(typ)
		out = append(out, res)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// an out-of-range page still reports the real total
	if len(out) == 0 && f.Offset() > 0 {
		err = r.observe("resources.list.count", func() error {
			countQuery := `SELECT COUNT(*) FROM resources`
			if len(conds) > 0 {
				countQuery += " WHERE " + strings.Join(conds, " AND ")
			}
			return r.pool.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&total)
		})
		if err != nil {
			return nil, 0, err
		}
	}

	return out, total, nil
}

// ListAll is the admin view: every resource regardless of availability.
func (r *ResourcesRepo) ListAll(ctx context.Context) ([]resource.Resource, error) {
	var rows pgx.Rows

	err := r.observe("resources.list_all", func() error {
		var err error
		rows, err = r.pool.Query(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY name ASC, id ASC`)
		return err
	})
	if err != nil {
		return nil, err
	}
	return collectResources(rows)
}

func (r *ResourcesRepo) Update(ctx context.Context, id string, req resource.UpdateRequest) (resource.Resource, error) {
	var res resource.Resource

	err := r.observe("resources.update", func() error {
		var err error
		res, err = scanResource(r.pool.QueryRow(ctx, `
			UPDATE resources
			SET name = $2,
			    description = $3,
			    resource_type = $4,
			    location = $5,
			    capacity = $6,
			    hourly_rate = $7,
			    updated_at = NOW()
			WHERE id = $1
			RETURNING `+resourceColumns,
			id, req.Name, req.Description, string(req.Type), req.Location, req.Capacity, req.HourlyRate,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resource.Resource{}, resource.ErrNotFound
		}
		return resource.Resource{}, err
	}
	return res, nil
}

func (r *ResourcesRepo) SetAvailability(ctx context.Context, id string, available bool) (resource.Resource, error) {
	var res resource.Resource

	err := r.observe("resources.set_availability", func() error {
		var err error
		res, err = scanResource(r.pool.QueryRow(ctx, `
			UPDATE resources
			SET is_available = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING `+resourceColumns, id, available))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resource.Resource{}, resource.ErrNotFound
		}
		return resource.Resource{}, err
	}
	return res, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
