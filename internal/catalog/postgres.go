package catalog

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/wolfman30/salon-booking/internal/booking"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// PostgresRepository reads the catalog tables through pgx.
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository wraps a pgx pool (or anything with its Query method).
func NewPostgresRepository(db querier) *PostgresRepository {
	if db == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// ListServices implements Repository.
func (r *PostgresRepository) ListServices(ctx context.Context) ([]booking.ServiceEntry, error) {
	query, args, err := psql.Select("id::text", "name", "COALESCE(category, '')", "duration_minutes", "price::float8").
		From("services").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("category", "name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("catalog: build services query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	defer rows.Close()

	var out []booking.ServiceEntry
	for rows.Next() {
		var e booking.ServiceEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.DurationMinutes, &e.Price); err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	return out, nil
}

// ListLocations implements Repository.
func (r *PostgresRepository) ListLocations(ctx context.Context) ([]booking.Location, error) {
	query, args, err := psql.Select("id::text", "name", "COALESCE(address, '')", "COALESCE(external_branch_ref, '')").
		From("locations").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("catalog: build locations query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list locations: %w", err)
	}
	defer rows.Close()

	var out []booking.Location
	for rows.Next() {
		var l booking.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.BranchRef); err != nil {
			return nil, fmt.Errorf("catalog: scan location: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list locations: %w", err)
	}
	return out, nil
}

// ListStylists implements Repository.
func (r *PostgresRepository) ListStylists(ctx context.Context, branchRef string) ([]booking.Stylist, error) {
	query, args, err := psql.Select("id::text", "COALESCE(external_staff_ref, '')", "name", "COALESCE(photo_url, '')").
		From("staff").
		Where(squirrel.Eq{"branch_ref": branchRef}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Eq{"is_calendar_visible": true}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("catalog: build staff query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list staff: %w", err)
	}
	defer rows.Close()

	var out []booking.Stylist
	for rows.Next() {
		var s booking.Stylist
		if err := rows.Scan(&s.ID, &s.StaffRef, &s.Name, &s.PhotoURL); err != nil {
			return nil, fmt.Errorf("catalog: scan staff: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list staff: %w", err)
	}
	return out, nil
}

var _ Repository = (*PostgresRepository)(nil)
