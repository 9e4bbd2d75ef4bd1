package audithandler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"employeedir/internal/domain/audit"
	"employeedir/internal/lib/logger/sl"
	"employeedir/internal/transport/http/api"
	"employeedir/internal/transport/http/middleware"
	"employeedir/internal/transport/http/shared"
)

var knownActions = []string{"employee.create", "employee.update", "employee.delete"}

type Lister interface {
	List(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, int, error)
}

type Handler struct {
	Events Lister
}

func NewHandler(events Lister) *Handler {
	return &Handler{Events: events}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/audit-events", h.handleListEvents)
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()
	filter := audit.Filter{Action: query.Get("action"), EntityID: query.Get("entityId")}

	v := shared.NewValidator()
	v.Enum("action", filter.Action, knownActions, "must be one of employee.create, employee.update, employee.delete")
	v.PositiveID("entityId", filter.EntityID)
	if v.Reject(w, requestID) {
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	events, total, err := h.Events.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "audit list failed", sl.Err(err), slog.String("request_id", requestID))
		api.Internal(w, requestID)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, events, requestID)
}
