package healthhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const checkTimeout = 2 * time.Second

const (
	StatusOK          = "ok"
	StatusDisabled    = "disabled"
	StatusUnavailable = "unavailable"
)

// Pinger is satisfied by *pgxpool.Pool and, through PingFunc, a redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler serves liveness and readiness. A nil Database means the service
// runs on in-memory storage; a nil Cache means no Redis is configured.
type Handler struct {
	Database Pinger
	Cache    Pinger
}

func (h *Handler) HandleLive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReady fails only when the database is down; a lost cache degrades
// idempotency but the directory keeps working.
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	report := map[string]string{
		"database": probe(ctx, h.Database),
		"cache":    probe(ctx, h.Cache),
	}
	status := http.StatusOK
	if report["database"] == StatusUnavailable {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return StatusDisabled
	}
	if err := p.Ping(ctx); err != nil {
		return StatusUnavailable
	}
	return StatusOK
}
