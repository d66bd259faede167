package photo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, p *Photo) error
	GetByID(ctx context.Context, id string) (*Photo, error)
	ListByProperty(ctx context.Context, propertyID string) ([]*Photo, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewPgxRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var photoColumns = []string{
	"id", "property_id", "uploader_id", "filename", "content_type", "size", "storage_path", "thumbnail_path", "created_at",
}

func scanPhoto(row pgx.Row) (*Photo, error) {
	p := &Photo{}
	err := row.Scan(
		&p.ID,
		&p.PropertyID,
		&p.UploaderID,
		&p.Filename,
		&p.ContentType,
		&p.Size,
		&p.StoragePath,
		&p.ThumbnailPath,
		&p.CreatedAt,
	)
	return p, err
}

func (r *repository) Create(ctx context.Context, p *Photo) error {
	query, args, err := psql.Insert("public.property_photos").
		Columns(photoColumns...).
		Values(p.ID, p.PropertyID, p.UploaderID, p.Filename, p.ContentType, p.Size, p.StoragePath, p.ThumbnailPath, p.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("failed to create photo record: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Photo, error) {
	query, args, err := psql.Select(photoColumns...).
		From("public.property_photos").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	p, err := scanPhoto(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return p, nil
}

func (r *repository) ListByProperty(ctx context.Context, propertyID string) ([]*Photo, error) {
	query, args, err := psql.Select(photoColumns...).
		From("public.property_photos").
		Where(squirrel.Eq{"property_id": propertyID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.property_photos").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete photo record: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
