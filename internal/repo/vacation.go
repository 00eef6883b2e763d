// Package repo contains all database access logic for the vacation catalog.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL, type mapping and error classification.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/vacation-catalog/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// uniqueViolation is the Postgres SQLSTATE for a unique index collision.
const uniqueViolation = "23505"

// VacationRepo defines the persistence operations for Vacations.
// It guarantees that no two vacations share destination, start date
// and end date.
type VacationRepo interface {
	// List returns every vacation ordered by start_date ascending.
	List(ctx context.Context) ([]domain.Vacation, error)

	// GetByID returns domain.ErrNotFound if no vacation has that ID.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Vacation, error)

	// FindDuplicate returns the vacation occupying the (destination, start, end)
	// tuple, ignoring excludeID when it is non-nil. Returns nil when the tuple is free.
	FindDuplicate(ctx context.Context, destination string, start, end time.Time, excludeID *uuid.UUID) (*domain.Vacation, error)

	// Create inserts a vacation with an empty follower set.
	// Returns domain.ErrConflict if the tuple is already taken.
	Create(ctx context.Context, v domain.Vacation) (domain.Vacation, error)

	// Update overwrites every mutable field except followers. An empty v.Image
	// keeps the stored image. It also returns the image handle the row held
	// immediately before this write, read under a row lock.
	// Returns domain.ErrNotFound, domain.ErrConflict, or domain.ErrPersistence
	// when the write did not match exactly one row.
	Update(ctx context.Context, v domain.Vacation) (domain.Vacation, string, error)

	// Delete removes a vacation and returns the row as it was before deletion,
	// so the caller can clean up its image. Returns domain.ErrNotFound if no row matched.
	Delete(ctx context.Context, id uuid.UUID) (domain.Vacation, error)
}

// pgVacationRepo is the Postgres implementation of VacationRepo.
type pgVacationRepo struct {
	db db
}

// NewVacationRepo constructs a VacationRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewVacationRepo(db db) VacationRepo {
	return &pgVacationRepo{db: db}
}

const vacationColumns = `id, code, destination, description, start_date, end_date, price, image, followers, created_at, updated_at`

func (r *pgVacationRepo) List(ctx context.Context) ([]domain.Vacation, error) {
	q := `SELECT ` + vacationColumns + ` FROM vacations ORDER BY start_date, destination`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.VacationRepo.List: %w", classify(err))
	}
	defer rows.Close()

	vacations := []domain.Vacation{}
	for rows.Next() {
		v, err := scanVacation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.VacationRepo.List: scan: %w", err)
		}
		vacations = append(vacations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.VacationRepo.List: rows: %w", classify(err))
	}
	return vacations, nil
}

func (r *pgVacationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vacation, error) {
	q := `SELECT ` + vacationColumns + ` FROM vacations WHERE id = @id`

	v, err := scanVacation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Vacation{}, fmt.Errorf("repo.VacationRepo.GetByID: %w", err)
	}
	return v, nil
}

func (r *pgVacationRepo) FindDuplicate(ctx context.Context, destination string, start, end time.Time, excludeID *uuid.UUID) (*domain.Vacation, error) {
	q := `SELECT ` + vacationColumns + `
		FROM vacations
		WHERE destination = @destination
		  AND start_date  = @start_date
		  AND end_date    = @end_date
		  AND (@exclude_id::uuid IS NULL OR id <> @exclude_id::uuid)
		LIMIT 1`

	args := pgx.NamedArgs{
		"destination": destination,
		"start_date":  start,
		"end_date":    end,
		"exclude_id":  excludeID, // nil becomes NULL
	}

	v, err := scanVacation(r.db.QueryRow(ctx, q, args))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repo.VacationRepo.FindDuplicate: %w", err)
	}
	return &v, nil
}

// Create checks the tuple first and then inserts. The read and the write are
// not atomic; two concurrent creates can both pass the read, in which case the
// unique index rejects the second insert and it surfaces as domain.ErrConflict.
func (r *pgVacationRepo) Create(ctx context.Context, v domain.Vacation) (domain.Vacation, error) {
	dup, err := r.FindDuplicate(ctx, v.Destination, v.StartDate, v.EndDate, nil)
	if err != nil {
		return domain.Vacation{}, fmt.Errorf("repo.VacationRepo.Create: %w", err)
	}
	if dup != nil {
		return domain.Vacation{}, fmt.Errorf("repo.VacationRepo.Create: %w", domain.ErrConflict)
	}

	q := `
		INSERT INTO vacations (code, destination, description, start_date, end_date, price, image)
		VALUES (@code, @destination, @description, @start_date, @end_date, @price, @image)
		RETURNING ` + vacationColumns

	result, err := scanVacation(r.db.QueryRow(ctx, q, writeArgs(v)))
	if errors.Is(err, domain.ErrNotFound) {
		// INSERT ... RETURNING always yields a row when the write is acknowledged.
		return domain.Vacation{}, fmt.Errorf("repo.VacationRepo.Create: insert not acknowledged: %w", domain.ErrPersistence)
	}
	if err != nil {
		return domain.Vacation{}, fmt.Errorf("repo.VacationRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgVacationRepo) Update(ctx context.Context, v domain.Vacation) (domain.Vacation, string, error) {
	if _, err := r.GetByID(ctx, v.ID); err != nil {
		return domain.Vacation{}, "", fmt.Errorf("repo.VacationRepo.Update: %w", err)
	}

	dup, err := r.FindDuplicate(ctx, v.Destination, v.StartDate, v.EndDate, &v.ID)
	if err != nil {
		return domain.Vacation{}, "", fmt.Errorf("repo.VacationRepo.Update: %w", err)
	}
	if dup != nil {
		return domain.Vacation{}, "", fmt.Errorf("repo.VacationRepo.Update: %w", domain.ErrConflict)
	}

	// The prev subquery locks the row, so prev.image is the image this write
	// replaced even when another update committed in between.
	const q = `
		UPDATE vacations v
		SET code        = @code,
		    destination = @destination,
		    description = @description,
		    start_date  = @start_date,
		    end_date    = @end_date,
		    price       = @price,
		    image       = COALESCE(NULLIF(@image, ''), prev.image),
		    updated_at  = now()
		FROM (SELECT id, image FROM vacations WHERE id = @id FOR UPDATE) prev
		WHERE v.id = prev.id
		RETURNING prev.image,
		          v.id, v.code, v.destination, v.description, v.start_date, v.end_date,
		          v.price, v.image, v.followers, v.created_at, v.updated_at`

	args := writeArgs(v)
	args["id"] = v.ID

	var previous string
	row := r.db.QueryRow(ctx, q, args)
	result, err := scanVacation(prefixScanner{row: row, prefix: []any{&previous}})
	if errors.Is(err, domain.ErrNotFound) {
		// The row existed a moment ago; a concurrent delete won the race.
		return domain.Vacation{}, "", fmt.Errorf("repo.VacationRepo.Update: matched 0 rows: %w", domain.ErrPersistence)
	}
	if err != nil {
		return domain.Vacation{}, "", fmt.Errorf("repo.VacationRepo.Update: %w", err)
	}
	return result, previous, nil
}

func (r *pgVacationRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Vacation, error) {
	q := `DELETE FROM vacations WHERE id = @id RETURNING ` + vacationColumns

	v, err := scanVacation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Vacation{}, fmt.Errorf("repo.VacationRepo.Delete: %w", err)
	}
	return v, nil
}

// writeArgs maps the mutable columns of v to named query arguments.
func writeArgs(v domain.Vacation) pgx.NamedArgs {
	return pgx.NamedArgs{
		"code":        v.Code,
		"destination": v.Destination,
		"description": v.Description,
		"start_date":  v.StartDate,
		"end_date":    v.EndDate,
		"price":       v.Price,
		"image":       v.Image,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanVacation to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// prefixScanner scans leading columns into prefix before the vacation columns.
type prefixScanner struct {
	row    scanner
	prefix []any
}

func (p prefixScanner) Scan(dest ...any) error {
	return p.row.Scan(append(p.prefix, dest...)...)
}

// scanVacation maps a single database row into a domain.Vacation.
// Driver errors are classified into domain sentinels.
func scanVacation(s scanner) (domain.Vacation, error) {
	var (
		v  domain.Vacation
		id pgtype.UUID
	)

	err := s.Scan(&id, &v.Code, &v.Destination, &v.Description, &v.StartDate, &v.EndDate,
		&v.Price, &v.Image, &v.Followers, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return domain.Vacation{}, classify(err)
	}

	v.ID = uuid.UUID(id.Bytes)
	if v.Followers == nil {
		v.Followers = []string{}
	}
	return v, nil
}

// classify maps pgx errors onto domain sentinels while keeping the original
// error in the chain for logging.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	return err
}
