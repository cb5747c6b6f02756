package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
)

// Logging writes a "request started" and a "request completed" line for every
// request. The completed line carries the status code and duration; it is
// logged at WARN for 429 and at ERROR for 5xx responses. The request ID comes
// from the logger installed by RequestID.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		record := logger.RequestRecord{Path: r.URL.Path, Method: r.Method}
		log := logger.FromContext(r.Context())
		log.LogAttrs(r.Context(), slog.LevelDebug, "request started",
			append(record.Attrs(), slog.String("remote_addr", r.RemoteAddr))...)

		defer func() {
			record.StatusCode = statusOf(ww)
			record.DurationMs = time.Since(start).Milliseconds()

			level := slog.LevelInfo
			switch {
			case record.StatusCode >= http.StatusInternalServerError:
				level = slog.LevelError
			case record.StatusCode == http.StatusTooManyRequests:
				level = slog.LevelWarn
			}
			log.LogAttrs(r.Context(), level, "request completed", record.Attrs()...)
		}()

		next.ServeHTTP(ww, r)
	})
}

// statusOf reports the written status, treating an untouched writer as 200.
func statusOf(ww chimw.WrapResponseWriter) int {
	if status := ww.Status(); status != 0 {
		return status
	}
	return http.StatusOK
}
