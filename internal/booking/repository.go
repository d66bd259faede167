package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/rental-booking-backend/internal/db"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/money"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/request"
)

// Tx is the view of the ledger available inside one atomic unit of work.
type Tx interface {
	// LockListing reads the property and blocks other writers for it until the unit ends.
	LockListing(ctx context.Context, propertyID string) (*Listing, error)
	// LockBooking reads a booking and blocks other writers for it until the unit ends.
	LockBooking(ctx context.Context, id string) (*Booking, error)
	// HasOverlap checks for a booking on the property whose stay intersects [checkIn, checkOut).
	// excludeID is used during reschedules to ignore the booking itself.
	HasOverlap(ctx context.Context, propertyID string, checkIn, checkOut time.Time, excludeID string) (bool, error)
	Insert(ctx context.Context, b *Booking) error
	UpdateStay(ctx context.Context, b *Booking) error
}

type Repository interface {
	// Atomically runs fn in a single transaction. Returning an error rolls it back.
	Atomically(ctx context.Context, fn func(tx Tx) error) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var bookingColumns = []string{
	"b.id", "b.guest_id", "g.username", "b.property_id", "p.title", "p.host_id",
	"b.check_in", "b.check_out", "b.total_price_cents", "b.created_at", "b.updated_at",
}

func bookingQuery() squirrel.SelectBuilder {
	return psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.properties p ON b.property_id = p.id").
		Join("public.users g ON b.guest_id = g.id")
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	var cents int64
	dest := []any{
		&b.ID, &b.GuestID, &b.GuestUsername, &b.PropertyID, &b.PropertyTitle, &b.HostID,
		&b.CheckIn, &b.CheckOut, &cents, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	b.TotalPrice = money.Amount(cents)
	b.CheckIn, b.CheckOut = Date(b.CheckIn), Date(b.CheckOut)
	return &b, nil
}

func (r *pgxRepository) Atomically(ctx context.Context, fn func(tx Tx) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgxTx{tx: tx})
	})
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := bookingQuery().Where(squirrel.Eq{"b.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := psql.Select(append(bookingColumns, "count(*) OVER() AS total_count")...).
		From("public.bookings b").
		Join("public.properties p ON b.property_id = p.id").
		Join("public.users g ON b.guest_id = g.id")

	if filter.GuestID != "" {
		query = query.Where(squirrel.Eq{"b.guest_id": filter.GuestID})
	}
	if filter.HostID != "" {
		query = query.Where(squirrel.Eq{"p.host_id": filter.HostID})
	}
	if filter.PropertyID != "" {
		query = query.Where(squirrel.Eq{"b.property_id": filter.PropertyID})
	}
	// Date window filtering (half-open intersection)
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"b.check_out": Date(*filter.From)})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"b.check_in": Date(*filter.To)})
	}

	orderDir := "ASC"
	if filter.SortOrder == "DESC" {
		orderDir = "DESC"
	}
	query = query.OrderBy("b.check_in "+orderDir, "b.id "+orderDir)

	params := request.ListParams{Page: filter.Page, PageSize: filter.PageSize}
	params.Normalize()
	query = query.Limit(uint64(params.PageSize)).Offset(uint64(params.Offset()))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) LockListing(ctx context.Context, propertyID string) (*Listing, error) {
	query, args, err := psql.Select("id", "host_id", "price_per_night_cents").
		From("public.properties").
		Where(squirrel.Eq{"id": propertyID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock property query failed: %w", err)
	}

	var l Listing
	var cents int64
	if err := t.tx.QueryRow(ctx, query, args...).Scan(&l.ID, &l.HostID, &cents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("lock property failed: %w", err)
	}
	l.PricePerNight = money.Amount(cents)
	return &l, nil
}

func (t *pgxTx) LockBooking(ctx context.Context, id string) (*Booking, error) {
	query, args, err := bookingQuery().
		Where(squirrel.Eq{"b.id": id}).
		Suffix("FOR UPDATE OF b").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock booking query failed: %w", err)
	}

	b, err := scanBooking(t.tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock booking failed: %w", err)
	}
	return b, nil
}

func (t *pgxTx) HasOverlap(ctx context.Context, propertyID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	// Overlap: existing.check_out > new.check_in AND existing.check_in < new.check_out.
	// Strict comparisons let a stay start on the day another ends.
	sub := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"property_id": propertyID}).
		Where(squirrel.Gt{"check_out": checkIn}).
		Where(squirrel.Lt{"check_in": checkOut})

	if excludeID != "" {
		sub = sub.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := sub.ToSql()
	if err != nil {
		return false, fmt.Errorf("build check overlap query failed: %w", err)
	}

	var exists bool
	if err := t.tx.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (t *pgxTx) Insert(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns("guest_id", "property_id", "check_in", "check_out", "total_price_cents").
		Values(b.GuestID, b.PropertyID, b.CheckIn, b.CheckOut, b.TotalPrice.Cents()).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := t.tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return mapWriteError("create booking", err)
	}
	return nil
}

func (t *pgxTx) UpdateStay(ctx context.Context, b *Booking) error {
	query, args, err := psql.Update("public.bookings").
		Set("check_in", b.CheckIn).
		Set("check_out", b.CheckOut).
		Set("total_price_cents", b.TotalPrice.Cents()).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := t.tx.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return mapWriteError("update booking", err)
	}
	return nil
}

const datesOrderedConstraint = "bookings_dates_ordered"

// mapWriteError turns constraint violations into the same errors the rules produce,
// so a write that slipped past the checks still fails the same way.
func mapWriteError(op string, err error) error {
	var e *pgconn.PgError
	if errors.As(err, &e) {
		switch e.Code {
		case pgerrcode.ExclusionViolation:
			return ErrDateConflict
		case pgerrcode.CheckViolation:
			if e.ConstraintName == datesOrderedConstraint {
				return ErrInvalidDateRange
			}
		case pgerrcode.ForeignKeyViolation:
			return ErrPropertyNotFound
		}
	}
	return fmt.Errorf("%s failed: %w", op, err)
}
