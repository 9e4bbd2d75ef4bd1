package middleware

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"employeedir/internal/lib/logger/sl"
	"employeedir/internal/platform/idempotency"
	"employeedir/internal/requestctx"
	"employeedir/internal/transport/http/api"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"
	maxKeyLength      = 255
)

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// Idempotency de-duplicates POSTs carrying an Idempotency-Key header. Keys are
// scoped to the actor and route. Completed non-5xx responses are replayed for
// the key's lifetime; 5xx responses free the key for a retry.
func Idempotency(store idempotency.Store, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			requestID := GetRequestID(r.Context())
			if len(key) > maxKeyLength {
				api.Fail(w, http.StatusBadRequest, "invalid_idempotency_key", "idempotency key too long", requestID)
				return
			}

			payload, err := io.ReadAll(r.Body)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
					return
				}
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "could not read request body", requestID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(payload))

			scoped := requestctx.GetActor(r.Context()) + ":" + r.URL.Path + ":" + key
			hash := idempotency.RequestHash(payload)

			stored, err := store.Begin(r.Context(), scoped, hash, ttl)
			switch {
			case errors.Is(err, idempotency.ErrInProgress):
				api.Fail(w, http.StatusConflict, "request_in_progress", "a request with this idempotency key is in progress", requestID)
				return
			case errors.Is(err, idempotency.ErrConflict):
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", requestID)
				return
			case err != nil:
				slog.ErrorContext(r.Context(), "idempotency lookup failed", sl.Err(err))
				api.Internal(w, requestID)
				return
			case stored != nil:
				if stored.ContentType != "" {
					w.Header().Set("Content-Type", stored.ContentType)
				}
				w.Header().Set(ReplayedHeader, "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}

			capture := &captureWriter{ResponseWriter: w}
			defer func() {
				if rec := recover(); rec != nil {
					_ = store.Release(r.Context(), scoped)
					panic(rec)
				}
			}()
			next.ServeHTTP(capture, r)

			status := capture.status
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				if err := store.Release(r.Context(), scoped); err != nil {
					slog.WarnContext(r.Context(), "idempotency release failed", sl.Err(err))
				}
				return
			}
			resp := idempotency.Response{
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			}
			if err := store.Complete(r.Context(), scoped, hash, resp, ttl); err != nil {
				slog.WarnContext(r.Context(), "idempotency save failed", sl.Err(err))
			}
		})
	}
}
