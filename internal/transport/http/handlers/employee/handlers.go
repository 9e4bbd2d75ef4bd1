package employeehandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"employeedir/internal/domain/employee"
	"employeedir/internal/export"
	"employeedir/internal/lib/logger/sl"
	"employeedir/internal/transport/http/api"
	"employeedir/internal/transport/http/middleware"
	"employeedir/internal/transport/http/shared"
)

const DeletedMessage = "Employee deleted successfully"

type Service interface {
	List(ctx context.Context) ([]employee.Employee, error)
	Get(ctx context.Context, id int64) (employee.Employee, error)
	Create(ctx context.Context, in employee.Input) (employee.Employee, error)
	Update(ctx context.Context, id int64, in employee.Input) (employee.Employee, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	Service Service
	Log     *slog.Logger
}

func NewHandler(service Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Service: service, Log: log.With(slog.String("component", "employees"))}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/export.pdf", h.handleExportPDF)
		r.Get("/export.xlsx", h.handleExportXLSX)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Patch("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var in employee.Input
	if !shared.DecodeJSON(w, r, &in, requestID) {
		return
	}
	created, err := h.Service.Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	emp, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	var in employee.Input
	if !shared.DecodeJSON(w, r, &in, requestID) {
		return
	}
	updated, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	api.Message(w, DeletedMessage, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=employees.pdf")
	if err := export.RosterPDF(w, list, time.Now()); err != nil {
		h.Log.ErrorContext(r.Context(), "roster pdf export failed", sl.Err(err))
	}
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=employees.xlsx")
	if err := export.RosterXLSX(w, list); err != nil {
		h.Log.ErrorContext(r.Context(), "roster xlsx export failed", sl.Err(err))
	}
}

// pathID parses {id}. Anything that is not a positive integer cannot name an
// employee and is reported as not found.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		api.Fail(w, http.StatusNotFound, "not_found", "Employee not found", middleware.GetRequestID(r.Context()))
		return 0, false
	}
	return id, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	if verr, ok := employee.AsValidationError(err); ok {
		api.FailValidation(w, verr.Fields, requestID)
		return
	}
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "Employee not found", requestID)
		return
	}
	h.Log.ErrorContext(r.Context(), "employee request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", requestID),
		sl.Err(err),
	)
	api.Internal(w, requestID)
}
