package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/task-tracker-api/internal/api/shared"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds client-supplied request IDs.
const maxRequestIDLength = 128

// RequestID assigns every request an ID and a logger carrying it.
// A well-formed X-Request-ID from the client is kept, otherwise a UUID is
// generated. The ID is echoed in the response header.
// This middleware should be applied early in the chain so that all later
// handlers and log lines see the ID.
func RequestID(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if !validRequestID(requestID) {
				requestID = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, requestID)

			ctx := shared.WithRequestID(r.Context(), requestID)
			ctx = logger.WithLogger(ctx, base.With(logger.RequestRecord{RequestID: requestID}.Args()...))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validRequestID accepts non-empty printable ASCII without spaces.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
