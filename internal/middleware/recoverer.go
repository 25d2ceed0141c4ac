package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Mehdichaaki/dashbord/internal/httputil"
)

// Recoverer turns a panic into a generic 500. The stack only goes to the log.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
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

				logger.ErrorContext(r.Context(), "panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				httputil.RespondWithError(w, http.StatusInternalServerError, "something went wrong on the server")
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithError(w, http.StatusNotFound, "resource not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
}
