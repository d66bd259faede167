package property

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/money"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/request"
)

// Repository defines data access methods for properties.
type Repository interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context, filter Filter) ([]*Property, int, error)
	Update(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// sortColumns whitelists the sort_by values accepted from clients.
var sortColumns = map[string]string{
	"created_at":      "p.created_at",
	"price_per_night": "p.price_per_night_cents",
	"bedrooms":        "p.bedrooms",
	"title":           "p.title",
}

var propertyColumns = []string{
	"p.id", "p.host_id", "u.username", "p.title", "p.description", "p.price_per_night_cents",
	"p.bedrooms", "p.location", "p.created_at", "p.updated_at",
}

func (r *pgxRepository) Create(ctx context.Context, p *Property) error {
	query, args, err := psql.Insert("public.properties").
		Columns("host_id", "title", "description", "price_per_night_cents", "bedrooms", "location").
		Values(p.HostID, p.Title, p.Description, p.PricePerNight.Cents(), p.Bedrooms, p.Location).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create property query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.ForeignKeyViolation {
			return ErrHostNotFound
		}
		return fmt.Errorf("create property failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Property, error) {
	query, args, err := psql.Select(propertyColumns...).
		From("public.properties p").
		Join("public.users u ON p.host_id = u.id").
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get property query failed: %w", err)
	}

	var p Property
	var cents int64
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.HostID, &p.HostUsername, &p.Title, &p.Description, &cents,
		&p.Bedrooms, &p.Location, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get property failed: %w", err)
	}
	p.PricePerNight = money.Amount(cents)
	return &p, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Property, int, error) {
	query := psql.Select(append(propertyColumns, "count(*) OVER() AS total_count")...).
		From("public.properties p").
		Join("public.users u ON p.host_id = u.id")

	// Dynamic Filtering
	if filter.HostID != "" {
		query = query.Where(squirrel.Eq{"p.host_id": filter.HostID})
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"p.title": kw},
			squirrel.ILike{"p.description": kw},
		})
	}
	if filter.Location != "" {
		query = query.Where(squirrel.ILike{"p.location": "%" + filter.Location + "%"})
	}
	if filter.MinPrice != nil {
		query = query.Where(squirrel.GtOrEq{"p.price_per_night_cents": filter.MinPrice.Cents()})
	}
	if filter.MaxPrice != nil {
		query = query.Where(squirrel.LtOrEq{"p.price_per_night_cents": filter.MaxPrice.Cents()})
	}
	if filter.MinBedrooms != nil {
		query = query.Where(squirrel.GtOrEq{"p.bedrooms": *filter.MinBedrooms})
	}

	orderBy, ok := sortColumns[filter.SortBy]
	if !ok {
		orderBy = "p.created_at"
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	// id breaks ties so pages are stable
	query = query.OrderBy(orderBy+" "+orderDir, "p.id "+orderDir)

	params := request.ListParams{Page: filter.Page, PageSize: filter.PageSize}
	params.Normalize()
	query = query.Limit(uint64(params.PageSize)).Offset(uint64(params.Offset()))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list properties query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list properties failed: %w", err)
	}
	defer rows.Close()

	var properties []*Property
	var total int

	for rows.Next() {
		var p Property
		var cents int64
		if err := rows.Scan(
			&p.ID, &p.HostID, &p.HostUsername, &p.Title, &p.Description, &cents,
			&p.Bedrooms, &p.Location, &p.CreatedAt, &p.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan property failed: %w", err)
		}
		p.PricePerNight = money.Amount(cents)
		properties = append(properties, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list properties failed: %w", err)
	}

	return properties, total, nil
}

// Update writes the mutable fields. host_id is deliberately absent.
func (r *pgxRepository) Update(ctx context.Context, p *Property) error {
	query, args, err := psql.Update("public.properties").
		Set("title", p.Title).
		Set("description", p.Description).
		Set("price_per_night_cents", p.PricePerNight.Cents()).
		Set("bedrooms", p.Bedrooms).
		Set("location", p.Location).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": p.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update property query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update property failed: %w", err)
	}
	return nil
}

// Delete removes the property; bookings and photos go with it through ON DELETE CASCADE.
func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.properties").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete property query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete property failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
