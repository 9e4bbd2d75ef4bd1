package employee

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var employeeColumns = []string{"id", "name", "email", "position", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock, nil), mock
}

func TestStoreList(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, name, email, position, created_at, updated_at\s+FROM employees\s+ORDER BY id ASC`).
		WillReturnRows(pgxmock.NewRows(employeeColumns).
			AddRow(int64(1), "Ada Lovelace", "ada@example.com", "Engineer", now, now).
			AddRow(int64(2), "Grace Hopper", "grace@example.com", "Admiral", now, now))

	list, err := store.List(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "grace@example.com", list[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreGetNotFound(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM employees\s+WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(employeeColumns))

	_, err := store.Get(context.Background(), 7)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreInsert(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	fields := Fields{Name: "Ada Lovelace", Email: "ada@example.com", Position: "Engineer"}

	mock.ExpectQuery(`INSERT INTO employees`).
		WithArgs(fields.Name, fields.Email, fields.Position, now).
		WillReturnRows(pgxmock.NewRows(employeeColumns).
			AddRow(int64(1), fields.Name, fields.Email, fields.Position, now, now))

	emp, err := store.Insert(context.Background(), fields, now)

	require.NoError(t, err)
	assert.Equal(t, Employee{ID: 1, Name: fields.Name, Email: fields.Email, Position: fields.Position, CreatedAt: now, UpdatedAt: now}, emp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreInsertUniqueViolation(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)
	now := time.Now()
	fields := Fields{Name: "Ada", Email: "ada@example.com", Position: "Engineer"}

	mock.ExpectQuery(`INSERT INTO employees`).
		WithArgs(fields.Name, fields.Email, fields.Position, now).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "employees_email_key"})

	_, err := store.Insert(context.Background(), fields, now)

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpdateNotFound(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)
	now := time.Now()
	fields := Fields{Name: "Ada", Email: "ada@example.com", Position: "Engineer"}

	mock.ExpectQuery(`UPDATE employees`).
		WithArgs(int64(9), fields.Name, fields.Email, fields.Position, now).
		WillReturnRows(pgxmock.NewRows(employeeColumns))

	_, err := store.Update(context.Background(), 9, fields, now)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM employees WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM employees WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, store.Delete(context.Background(), 3))
	assert.ErrorIs(t, store.Delete(context.Background(), 4), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreEmailTaken(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("ada@example.com", int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := store.EmailTaken(context.Background(), "ada@example.com", 5)

	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslatePgError(t *testing.T) {
	t.Parallel()

	other := errors.New("boom")
	otherUnique := &pgconn.PgError{Code: "23505", ConstraintName: "something_else"}

	assert.NoError(t, translatePgError(nil))
	assert.ErrorIs(t, translatePgError(&pgconn.PgError{Code: "23505", ConstraintName: emailConstraint}), ErrEmailTaken)
	assert.Same(t, other, translatePgError(other))
	assert.Equal(t, error(otherUnique), translatePgError(otherUnique))
}
