package employeehandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"employeedir/internal/domain/audit"
	"employeedir/internal/domain/employee"
	employeehandler "employeedir/internal/transport/http/handlers/employee"
	"employeedir/internal/transport/http/middleware"
)

type envelope struct {
	Status    string              `json:"status"`
	Data      json.RawMessage     `json:"data"`
	Message   string              `json:"message"`
	Code      string              `json:"code"`
	Errors    map[string][]string `json:"errors"`
	RequestID string              `json:"requestId"`
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter(svc employeehandler.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/api", func(r chi.Router) {
		employeehandler.NewHandler(svc, quietLogger()).RegisterRoutes(r)
	})
	return r
}

func newTestRouter() http.Handler {
	svc := employee.NewService(employee.NewMemStore(), nil, audit.NewMemoryLog(quietLogger()), employee.WithLogger(quietLogger()))
	return newRouter(svc)
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.NotEmpty(t, env.RequestID)
	assert.Equal(t, env.RequestID, rec.Header().Get("X-Request-ID"))
	return rec.Code, env
}

func decodeEmployee(t *testing.T, raw json.RawMessage) employee.Employee {
	t.Helper()
	var emp employee.Employee
	require.NoError(t, json.Unmarshal(raw, &emp))
	return emp
}

func TestCreateAndRead(t *testing.T) {
	t.Parallel()
	h := newTestRouter()

	status, env := do(t, h, http.MethodPost, "/api/employees", `{"name":"Ada Lovelace","email":"ada@example.com","position":"Engineer"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "success", env.Status)
	created := decodeEmployee(t, env.Data)
	assert.Equal(t, int64(1), created.ID)
	assert.Contains(t, string(env.Data), `"created_at"`)

	status, env = do(t, h, http.MethodGet, "/api/employees/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created, decodeEmployee(t, env.Data))

	status, env = do(t, h, http.MethodGet, "/api/employees", "")
	require.Equal(t, http.StatusOK, status)
	var list []employee.Employee
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, []employee.Employee{created}, list)
}

func TestListEmpty(t *testing.T) {
	t.Parallel()

	status, env := do(t, newTestRouter(), http.MethodGet, "/api/employees", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want map[string][]string
	}{
		{
			name: "empty object",
			body: `{}`,
			want: map[string][]string{"name": {"is required"}, "email": {"is required"}, "position": {"is required"}},
		},
		{
			name: "bad email",
			body: `{"name":"Ada","email":"nope","position":"Engineer"}`,
			want: map[string][]string{"email": {"must be a valid email address"}},
		},
		{
			name: "wrong types",
			body: `{"name":123,"email":"ada@example.com","position":["x"]}`,
			want: map[string][]string{"name": {"must be a string"}, "position": {"must be a string"}},
		},
		{
			name: "too long",
			body: `{"name":"` + strings.Repeat("n", 256) + `","email":"ada@example.com","position":"Engineer"}`,
			want: map[string][]string{"name": {"must not exceed 255 characters"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			status, env := do(t, newTestRouter(), http.MethodPost, "/api/employees", tc.body)
			assert.Equal(t, http.StatusUnprocessableEntity, status)
			assert.Equal(t, "error", env.Status)
			assert.NotEmpty(t, env.Message)
			assert.Equal(t, tc.want, env.Errors)
		})
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	t.Parallel()
	h := newTestRouter()

	status, _ := do(t, h, http.MethodPost, "/api/employees", `{"name":"Ada","email":"ada@example.com","position":"Engineer"}`)
	require.Equal(t, http.StatusCreated, status)

	status, env := do(t, h, http.MethodPost, "/api/employees", `{"name":"Other","email":"ada@example.com","position":"Engineer"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, map[string][]string{"email": {"already taken"}}, env.Errors)
}

func TestMalformedBody(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"name":`, `[1,2]`, `null`} {
		status, env := do(t, newTestRouter(), http.MethodPost, "/api/employees", body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, "invalid_payload", env.Code, body)
	}
}

func TestUnknownAndInvalidIDs(t *testing.T) {
	t.Parallel()
	h := newTestRouter()

	for _, path := range []string{"/api/employees/99", "/api/employees/abc", "/api/employees/0", "/api/employees/-4"} {
		status, env := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.Equal(t, "error", env.Status, path)

		status, _ = do(t, h, http.MethodDelete, path, "")
		assert.Equal(t, http.StatusNotFound, status, path)
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	h := newTestRouter()

	do(t, h, http.MethodPost, "/api/employees", `{"name":"Ada","email":"ada@example.com","position":"Engineer"}`)
	do(t, h, http.MethodPost, "/api/employees", `{"name":"Grace","email":"grace@example.com","position":"Admiral"}`)

	status, env := do(t, h, http.MethodPut, "/api/employees/1", `{"name":"Ada King","email":"ada@example.com","position":"Countess"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ada King", decodeEmployee(t, env.Data).Name)

	status, env = do(t, h, http.MethodPatch, "/api/employees/2", `{"name":"Grace","email":"ada@example.com","position":"Admiral"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, []string{"already taken"}, env.Errors["email"])

	status, _ = do(t, h, http.MethodPut, "/api/employees/42", `{}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	h := newTestRouter()

	do(t, h, http.MethodPost, "/api/employees", `{"name":"Ada","email":"ada@example.com","position":"Engineer"}`)

	status, env := do(t, h, http.MethodDelete, "/api/employees/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, employeehandler.DeletedMessage, env.Message)

	status, _ = do(t, h, http.MethodGet, "/api/employees/1", "")
	assert.Equal(t, http.StatusNotFound, status)
}

type brokenService struct{}

var errDatabaseDown = errors.New("dial tcp 10.0.0.5:5432: connection refused")

func (brokenService) List(context.Context) ([]employee.Employee, error) { return nil, errDatabaseDown }
func (brokenService) Get(context.Context, int64) (employee.Employee, error) {
	return employee.Employee{}, errDatabaseDown
}
func (brokenService) Create(context.Context, employee.Input) (employee.Employee, error) {
	return employee.Employee{}, errDatabaseDown
}
func (brokenService) Update(context.Context, int64, employee.Input) (employee.Employee, error) {
	return employee.Employee{}, errDatabaseDown
}
func (brokenService) Delete(context.Context, int64) error { return errDatabaseDown }

func TestInternalErrorsAreOpaque(t *testing.T) {
	t.Parallel()
	h := newRouter(brokenService{})

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/employees", ""},
		{http.MethodPost, "/api/employees", `{}`},
		{http.MethodGet, "/api/employees/1", ""},
		{http.MethodPut, "/api/employees/1", `{}`},
		{http.MethodDelete, "/api/employees/1", ""},
	} {
		status, env := do(t, h, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, status, tc.path)
		assert.Equal(t, "internal server error", env.Message)
		assert.NotContains(t, env.Message, "10.0.0.5")
	}
}

func TestExports(t *testing.T) {
	t.Parallel()
	h := newTestRouter()
	do(t, h, http.MethodPost, "/api/employees", `{"name":"Ada","email":"ada@example.com","position":"Engineer"}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/employees/export.pdf", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/employees/export.xlsx", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}
