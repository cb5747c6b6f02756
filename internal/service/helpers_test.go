package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/task-tracker-api/internal/config"
	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/service"
	"github.com/phrazzld/task-tracker-api/internal/store"
	"github.com/phrazzld/task-tracker-api/internal/store/memory"
	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fixture is a task service over an in-memory store seeded with three users,
// ids 1, 2 and 3.
type fixture struct {
	db    *memory.DB
	tasks store.TaskStore
	users store.UserStore
	svc   service.TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil, config.BulkConfig{MaxItems: 100, Concurrency: 4})
}

// newFixtureWith lets wrap replace the task store the service sees.
func newFixtureWith(t *testing.T, wrap func(store.TaskStore) store.TaskStore, bulk config.BulkConfig) *fixture {
	t.Helper()

	db := memory.NewDB()
	f := &fixture{
		db:    db,
		tasks: memory.NewTaskStore(db),
		users: memory.NewUserStore(db),
	}
	for _, email := range []string{"one@example.com", "two@example.com", "three@example.com"} {
		u, err := domain.NewUser(email, "password123", nil)
		require.NoError(t, err)
		u.HashedPassword = "hash"
		require.NoError(t, f.users.Create(context.Background(), u))
	}

	seen := f.tasks
	if wrap != nil {
		seen = wrap(f.tasks)
	}
	svc, err := service.NewTaskService(seen, f.users, bulk, quietLogger)
	require.NoError(t, err)
	f.svc = svc
	return f
}

// seed stores a task owned by owner with the given assignee and status.
func (f *fixture) seed(t *testing.T, owner int64, assignee *int64, status domain.Status) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(owner, "Seeded task", nil, domain.PriorityMedium, assignee)
	require.NoError(t, err)
	task.Status = status
	require.NoError(t, f.tasks.Create(context.Background(), task))
	return task
}

func (f *fixture) status(t *testing.T, id int64) domain.Status {
	t.Helper()
	task, err := f.tasks.GetByID(context.Background(), id)
	require.NoError(t, err)
	return task.Status
}

func id(v int64) *int64 { return &v }

func str(v string) *string { return &v }
