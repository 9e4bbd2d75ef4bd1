package audit

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"employeedir/internal/requestctx"
)

func TestRecordUsesRequestContext(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := New(mock)
	svc.Now = func() time.Time { return now }

	ctx := requestctx.WithActor(context.Background(), "alice")
	ctx = requestctx.WithRequestID(ctx, "req-1")
	ctx = requestctx.WithClientIP(ctx, "10.0.0.1")

	mock.ExpectExec(`INSERT INTO audit_events`).
		WithArgs("alice", "employee.create", "employee", "1", nil, []byte(`{"name":"Ada"}`), "req-1", "10.0.0.1", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = svc.Record(ctx, Entry{
		Action:     "employee.create",
		EntityType: "employee",
		EntityID:   "1",
		After:      map[string]string{"name": "Ada"},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBuildsFilteredQuery(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(1\) FROM audit_events WHERE 1=1 AND action = \$1 AND entity_id = \$2`).
		WithArgs("employee.update", "4").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM audit_events WHERE 1=1 AND action = \$1 AND entity_id = \$2 ORDER BY id DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("employee.update", "4", 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "actor", "action", "entity_type", "entity_id", "request_id", "ip", "created_at", "before_json", "after_json"}).
			AddRow(int64(11), "alice", "employee.update", "employee", "4", "req-9", "10.0.0.1", created, []byte(`{"name":"Old"}`), []byte(`{"name":"New"}`)))

	events, total, err := New(mock).List(context.Background(), Filter{Action: "employee.update", EntityID: "4"}, 20, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, int64(11), events[0].ID)
	assert.JSONEq(t, `{"name":"New"}`, string(events[0].After))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryLogFiltersAndPages(t *testing.T) {
	t.Parallel()
	log := NewMemoryLog(nil)
	ctx := context.Background()

	for _, entry := range []Entry{
		{Action: "employee.create", EntityType: "employee", EntityID: "1"},
		{Action: "employee.create", EntityType: "employee", EntityID: "2"},
		{Action: "employee.update", EntityType: "employee", EntityID: "1"},
		{Action: "employee.delete", EntityType: "employee", EntityID: "1"},
	} {
		require.NoError(t, log.Record(ctx, entry))
	}

	events, total, err := log.List(ctx, Filter{EntityID: "1"}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, events, 2)
	assert.Equal(t, "employee.delete", events[0].Action)
	assert.Equal(t, requestctx.AnonymousActor, events[0].Actor)

	events, _, err = log.List(ctx, Filter{EntityID: "1"}, 2, 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "employee.create", events[0].Action)

	events, total, err = log.List(ctx, Filter{Action: "employee.create"}, 10, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Empty(t, events)
}
