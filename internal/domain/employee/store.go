package employee

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"employeedir/internal/platform/db"
	"employeedir/internal/platform/metrics"
)

const (
	uniqueViolationCode = "23505"
	emailConstraint     = "employees_email_key"
)

// Store is the PostgreSQL implementation of StoreAPI. Queries join the
// transaction carried in the context when there is one.
type Store struct {
	DB      db.Queryer
	Metrics *metrics.Collector
}

func NewStore(pool db.Queryer, collector *metrics.Collector) *Store {
	return &Store{DB: pool, Metrics: collector}
}

func (s *Store) List(ctx context.Context) ([]Employee, error) {
	defer s.Metrics.ObserveQuery("employees_list", time.Now())
	rows, err := db.QueryerFromContext(ctx, s.DB).Query(ctx, `
    SELECT id, name, email, position, created_at, updated_at
    FROM employees
    ORDER BY id ASC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (Employee, error) {
	defer s.Metrics.ObserveQuery("employees_get", time.Now())
	row := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    SELECT id, name, email, position, created_at, updated_at
    FROM employees
    WHERE id = $1
  `, id)
	emp, err := scanEmployee(row)
	return emp, translatePgError(err)
}

func (s *Store) Insert(ctx context.Context, fields Fields, now time.Time) (Employee, error) {
	defer s.Metrics.ObserveQuery("employees_insert", time.Now())
	row := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    INSERT INTO employees (name, email, position, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $4)
    RETURNING id, name, email, position, created_at, updated_at
  `, fields.Name, fields.Email, fields.Position, now)
	emp, err := scanEmployee(row)
	return emp, translatePgError(err)
}

func (s *Store) Update(ctx context.Context, id int64, fields Fields, now time.Time) (Employee, error) {
	defer s.Metrics.ObserveQuery("employees_update", time.Now())
	row := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    UPDATE employees
    SET name = $2, email = $3, position = $4, updated_at = $5
    WHERE id = $1
    RETURNING id, name, email, position, created_at, updated_at
  `, id, fields.Name, fields.Email, fields.Position, now)
	emp, err := scanEmployee(row)
	return emp, translatePgError(err)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	defer s.Metrics.ObserveQuery("employees_delete", time.Now())
	tag, err := db.QueryerFromContext(ctx, s.DB).Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	defer s.Metrics.ObserveQuery("employees_email_taken", time.Now())
	var taken bool
	err := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM employees WHERE email = $1 AND id <> $2)
  `, email, excludeID).Scan(&taken)
	if err != nil {
		return false, err
	}
	return taken, nil
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	if err := row.Scan(&emp.ID, &emp.Name, &emp.Email, &emp.Position, &emp.CreatedAt, &emp.UpdatedAt); err != nil {
		return Employee{}, err
	}
	return emp, nil
}

func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == emailConstraint {
		return ErrEmailTaken
	}
	return err
}
