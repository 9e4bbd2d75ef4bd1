package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"employeedir/internal/transport/http/api"
)

// Recoverer turns a panic into an opaque 500 envelope and logs the stack.
func Recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.ErrorContext(r.Context(), "panic recovered",
					slog.String("panic", fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				api.Internal(w, GetRequestID(r.Context()))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
