package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/task-tracker-api/internal/metrics"
)

// Metrics records the final status code of every request in sink.
func Metrics(sink metrics.Sink) func(http.Handler) http.Handler {
	if sink == nil {
		sink = metrics.Discard{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				sink.Record(statusOf(ww))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
