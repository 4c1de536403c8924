package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// ContextLogger returns log with the request ID attached as a standing
// attribute, so every line emitted while serving a request carries it.
// Without an ID in ctx the logger is returned unchanged.
func ContextLogger(ctx context.Context, log *slog.Logger) *slog.Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return log.With("request_id", id)
	}
	return log
}

// statusRecorder captures the response status code for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one structured line per request: method, path, status,
// duration, and the request ID when RequestID ran earlier in the chain.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			ContextLogger(r.Context(), log).Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
