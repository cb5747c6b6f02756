package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/task-tracker-api/internal/metrics"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus float64
		wantLevel  string
	}{
		{
			name:       "implicit ok",
			handler:    func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) },
			wantStatus: 200,
			wantLevel:  "INFO",
		},
		{
			name:       "client error",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			wantStatus: 404,
			wantLevel:  "INFO",
		},
		{
			name:       "server error",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			wantStatus: 503,
			wantLevel:  "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf logger.TestLogBuffer
			base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			h := RequestID(base)(Logging(tt.handler))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", nil)
			req.Header.Set(RequestIDHeader, "req-7")
			h.ServeHTTP(httptest.NewRecorder(), req)

			entries, err := buf.Entries()
			require.NoError(t, err)
			require.Len(t, entries, 2)

			started, completed := entries[0], entries[1]
			assert.Equal(t, "request started", started["msg"])
			assert.Equal(t, "DEBUG", started["level"])
			assert.Equal(t, "POST", started["method"])
			assert.Equal(t, "/api/v1/tasks", started["path"])
			assert.Equal(t, "req-7", started["request_id"])
			assert.NotContains(t, started, "status_code")

			assert.Equal(t, "request completed", completed["msg"])
			assert.Equal(t, tt.wantLevel, completed["level"])
			assert.Equal(t, tt.wantStatus, completed["status_code"])
			assert.Equal(t, "req-7", completed["request_id"])
		})
	}
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	collector := metrics.NewCollector()
	h := Metrics(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/", "/", "/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	snap := collector.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, map[string]int64{"200": 2, "404": 1}, snap.StatusCodes)

	assert.NotPanics(t, func() {
		Metrics(nil)(http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
