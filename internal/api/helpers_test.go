package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-tracker-api/internal/api/shared"
	"github.com/phrazzld/task-tracker-api/internal/service"
	"github.com/stretchr/testify/require"
)

const testRequestID = "req-test-1"

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// withIdentity stands in for the request ID and auth middleware. An actorID
// of zero leaves the request unauthenticated.
func withIdentity(actorID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.WithRequestID(r.Context(), testRequestID)
			if actorID != 0 {
				ctx = shared.WithUserID(ctx, actorID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// newTaskRouter mounts a TaskHandler the way the server does.
func newTaskRouter(svc service.TaskService, actorID int64) http.Handler {
	h := NewTaskHandler(svc, quietLogger)
	r := chi.NewRouter()
	r.Use(withIdentity(actorID))
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.CreateTask)
		r.Get("/", h.ListTasks)
		r.Post("/bulk/transition", h.BulkTransition)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTask)
			r.Patch("/", h.UpdateTask)
			r.Delete("/", h.DeleteTask)
			r.Delete("/force", h.ForceDeleteTask)
			r.Post("/assign", h.AssignTask)
			r.Post("/transition", h.TransitionTask)
		})
	})
	return r
}

// do sends a request with an optional JSON body. A string body is sent as is.
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp), rec.Body.String())
	return resp
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v), rec.Body.String())
}

func ptr[T any](v T) *T {
	return &v
}
