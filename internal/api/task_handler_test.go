package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/phrazzld/task-tracker-api/internal/api/shared"
	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/mocks"
	"github.com/phrazzld/task-tracker-api/internal/service"
	"github.com/phrazzld/task-tracker-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleView(id int64, status domain.Status) *domain.TaskView {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.TaskView{
		Task: domain.Task{
			ID:        id,
			Title:     "Write report",
			Status:    status,
			Priority:  domain.PriorityMedium,
			OwnerID:   1,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Owner: domain.UserBrief{ID: 1, Email: "one@example.com"},
	}
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	t.Run("creates task owned by the caller", func(t *testing.T) {
		t.Parallel()

		var gotActor int64
		var gotParams service.CreateTaskParams
		svc := &mocks.MockTaskService{
			CreateFn: func(ctx context.Context, actorID int64, params service.CreateTaskParams) (*domain.TaskView, error) {
				gotActor, gotParams = actorID, params
				return sampleView(10, domain.StatusTodo), nil
			},
		}

		rec := do(t, newTaskRouter(svc, 1), http.MethodPost, "/tasks", map[string]any{
			"title":       "Write report",
			"description": "quarterly",
			"priority":    "high",
			"assignee_id": 2,
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, int64(1), gotActor)
		assert.Equal(t, "Write report", gotParams.Title)
		require.NotNil(t, gotParams.Description)
		assert.Equal(t, "quarterly", *gotParams.Description)
		assert.Equal(t, domain.PriorityHigh, gotParams.Priority)
		require.NotNil(t, gotParams.AssigneeID)
		assert.Equal(t, int64(2), *gotParams.AssigneeID)

		var view domain.TaskView
		decodeInto(t, rec, &view)
		assert.Equal(t, int64(10), view.ID)
		assert.Equal(t, domain.StatusTodo, view.Status)
		assert.Equal(t, "one@example.com", view.Owner.Email)
	})

	tests := []struct {
		name      string
		actorID   int64
		body      any
		wantCode  int
		wantError string
		wantField string
	}{
		{
			name:      "missing title",
			actorID:   1,
			body:      map[string]any{"description": "x"},
			wantCode:  http.StatusUnprocessableEntity,
			wantError: shared.CodeValidation,
			wantField: "title",
		},
		{
			name:      "unknown priority",
			actorID:   1,
			body:      map[string]any{"title": "x", "priority": "someday"},
			wantCode:  http.StatusUnprocessableEntity,
			wantError: shared.CodeValidation,
			wantField: "priority",
		},
		{
			name:      "malformed body",
			actorID:   1,
			body:      "{not json",
			wantCode:  http.StatusBadRequest,
			wantError: shared.CodeBadRequest,
		},
		{
			name:      "unauthenticated",
			actorID:   0,
			body:      map[string]any{"title": "x"},
			wantCode:  http.StatusUnauthorized,
			wantError: shared.CodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mocks.MockTaskService{
				CreateFn: func(context.Context, int64, service.CreateTaskParams) (*domain.TaskView, error) {
					t.Fatal("service must not be called")
					return nil, nil
				},
			}

			rec := do(t, newTaskRouter(svc, tt.actorID), http.MethodPost, "/tasks", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantError, resp.Error.Code)
			assert.Equal(t, testRequestID, resp.RequestID)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, resp.Error.Details["field"])
			}
		})
	}
}

func TestTransitionTask(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		svc := &mocks.MockTaskService{
			TransitionFn: func(ctx context.Context, taskID, actorID int64, target domain.Status) (*domain.TaskView, error) {
				assert.Equal(t, int64(5), taskID)
				assert.Equal(t, int64(1), actorID)
				assert.Equal(t, domain.StatusInProgress, target)
				return sampleView(5, domain.StatusInProgress), nil
			},
		}

		rec := do(t, newTaskRouter(svc, 1), http.MethodPost, "/tasks/5/transition",
			map[string]any{"status": "in_progress"})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var view domain.TaskView
		decodeInto(t, rec, &view)
		assert.Equal(t, domain.StatusInProgress, view.Status)
	})

	t.Run("illegal transition names both states", func(t *testing.T) {
		t.Parallel()

		svc := &mocks.MockTaskService{
			TransitionFn: func(context.Context, int64, int64, domain.Status) (*domain.TaskView, error) {
				return nil, service.NewTaskServiceError("transition", "transition rejected",
					&domain.TransitionError{Current: domain.StatusDone, Target: domain.StatusTodo})
			},
		}

		rec := do(t, newTaskRouter(svc, 1), http.MethodPost, "/tasks/5/transition",
			map[string]any{"status": "todo"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, shared.CodeInvalidTransition, resp.Error.Code)
		assert.Equal(t, "Cannot transition from 'done' to 'todo'", resp.Error.Message)
		assert.Equal(t, "done", resp.Error.Details["current_state"])
		assert.Equal(t, "todo", resp.Error.Details["target_state"])
	})

	t.Run("unknown target is rejected before the service", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newTaskRouter(&mocks.MockTaskService{Err: errors.New("unreachable")}, 1),
			http.MethodPost, "/tasks/5/transition", map[string]any{"status": "archived"})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "status", decodeError(t, rec).Error.Details["field"])
	})
}

func TestTaskHandler_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:       "permission denied",
			err:        service.NewTaskServiceError("transition", "denied", domain.ErrPermissionDenied),
			wantStatus: http.StatusForbidden,
			wantCode:   shared.CodeForbidden,
		},
		{
			name:        "task not found",
			err:         service.NewTaskServiceError("transition", "missing", store.ErrTaskNotFound),
			wantStatus:  http.StatusNotFound,
			wantCode:    shared.CodeNotFound,
			wantMessage: "Task not found",
		},
		{
			name:        "corrupt stored status",
			err:         service.NewTaskServiceError("transition", "bad state", domain.ErrInvalidState),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    shared.CodeInternal,
			wantMessage: "Failed to transition task",
		},
		{
			name:       "lost race after retries",
			err:        store.ErrConflict,
			wantStatus: http.StatusConflict,
			wantCode:   shared.CodeConflict,
		},
		{
			name:        "unexpected failure",
			err:         errors.New("connection reset by peer"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    shared.CodeInternal,
			wantMessage: "Failed to transition task",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mocks.MockTaskService{Err: tt.err}
			rec := do(t, newTaskRouter(svc, 3), http.MethodPost, "/tasks/9/transition",
				map[string]any{"status": "done"})

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Error.Message)
			}
			assert.NotContains(t, rec.Body.String(), "connection reset")
		})
	}
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	svc := &mocks.MockTaskService{
		GetFn: func(ctx context.Context, taskID int64) (*domain.TaskView, error) {
			if taskID == 5 {
				return sampleView(5, domain.StatusTodo), nil
			}
			return nil, store.ErrTaskNotFound
		},
	}
	router := newTaskRouter(svc, 2)

	rec := do(t, router, http.MethodGet, "/tasks/5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/tasks/6", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, bad := range []string{"abc", "0", "-4"} {
		rec = do(t, router, http.MethodGet, "/tasks/"+bad, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, bad)
		assert.Equal(t, "id", decodeError(t, rec).Error.Details["field"], bad)
	}
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("passes only supplied fields", func(t *testing.T) {
		t.Parallel()

		var got service.UpdateTaskParams
		svc := &mocks.MockTaskService{
			UpdateFn: func(ctx context.Context, taskID, actorID int64, params service.UpdateTaskParams) (*domain.TaskView, error) {
				got = params
				return sampleView(taskID, domain.StatusTodo), nil
			},
		}

		rec := do(t, newTaskRouter(svc, 1), http.MethodPatch, "/tasks/4",
			map[string]any{"priority": "urgent"})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Nil(t, got.Title)
		assert.Nil(t, got.Description)
		require.NotNil(t, got.Priority)
		assert.Equal(t, domain.PriorityUrgent, *got.Priority)
	})

	t.Run("status cannot change through update", func(t *testing.T) {
		t.Parallel()

		svc := &mocks.MockTaskService{
			UpdateFn: func(context.Context, int64, int64, service.UpdateTaskParams) (*domain.TaskView, error) {
				t.Fatal("service must not be called")
				return nil, nil
			},
		}

		rec := do(t, newTaskRouter(svc, 1), http.MethodPatch, "/tasks/4",
			map[string]any{"title": "x", "status": "done"})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, shared.CodeValidation, resp.Error.Code)
		assert.Equal(t, "status", resp.Error.Details["field"])
	})
}

func TestDeleteAndForceDelete(t *testing.T) {
	t.Parallel()

	var deleted, forced []int64
	svc := &mocks.MockTaskService{
		DeleteFn: func(ctx context.Context, taskID, actorID int64) error {
			deleted = append(deleted, taskID)
			return nil
		},
		ForceDeleteFn: func(ctx context.Context, taskID, actorID int64) error {
			if actorID != 1 {
				return service.NewTaskServiceError("force_delete", "denied", domain.ErrPermissionDenied)
			}
			forced = append(forced, taskID)
			return nil
		},
	}

	rec := do(t, newTaskRouter(svc, 1), http.MethodDelete, "/tasks/3", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, newTaskRouter(svc, 1), http.MethodDelete, "/tasks/8/force", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, newTaskRouter(svc, 3), http.MethodDelete, "/tasks/9/force", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Equal(t, []int64{3}, deleted)
	assert.Equal(t, []int64{8}, forced)
}

func TestAssignTask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     any
		wantCode int
		want     *int64
	}{
		{name: "sets assignee", body: map[string]any{"assignee_id": 2}, wantCode: http.StatusOK, want: ptr(int64(2))},
		{name: "null clears assignee", body: map[string]any{"assignee_id": nil}, wantCode: http.StatusOK},
		{name: "missing clears assignee", body: map[string]any{}, wantCode: http.StatusOK},
		{name: "non-positive id", body: map[string]any{"assignee_id": 0}, wantCode: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			var got *int64
			svc := &mocks.MockTaskService{
				AssignFn: func(ctx context.Context, taskID, actorID int64, assigneeID *int64) (*domain.TaskView, error) {
					called = true
					got = assigneeID
					return sampleView(taskID, domain.StatusTodo), nil
				},
			}

			rec := do(t, newTaskRouter(svc, 1), http.MethodPost, "/tasks/2/assign", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				assert.False(t, called)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBulkTransition(t *testing.T) {
	t.Parallel()

	t.Run("partial success is a 200 with per-item results", func(t *testing.T) {
		t.Parallel()

		todo, inProgress, done := domain.StatusTodo, domain.StatusInProgress, domain.StatusDone
		svc := &mocks.MockTaskService{
			BulkTransitionFn: func(ctx context.Context, actorID int64, ids []int64, target domain.Status) (*service.BulkResult, error) {
				assert.Equal(t, []int64{1, 2, 3}, ids)
				assert.Equal(t, domain.StatusInProgress, target)
				return &service.BulkResult{
					Total: 3, Successful: 2, Failed: 1,
					Results: []service.BulkItemResult{
						{TaskID: 1, Success: true, PreviousStatus: &todo, NewStatus: &inProgress},
						{TaskID: 2, Success: true, PreviousStatus: &todo, NewStatus: &inProgress},
						{TaskID: 3, PreviousStatus: &done, Error: "Invalid transition from 'done' to 'in_progress'"},
					},
				}, nil
			},
		}

		rec := do(t, newTaskRouter(svc, 1), http.MethodPost, "/tasks/bulk/transition",
			map[string]any{"task_ids": []int64{1, 2, 3}, "status": "in_progress"})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body map[string]any
		decodeInto(t, rec, &body)
		assert.EqualValues(t, 3, body["total"])
		assert.EqualValues(t, 2, body["successful"])
		assert.EqualValues(t, 1, body["failed"])

		results := body["results"].([]any)
		require.Len(t, results, 3)
		first := results[0].(map[string]any)
		assert.EqualValues(t, 1, first["task_id"])
		assert.Equal(t, "todo", first["previous_status"])
		assert.Equal(t, "in_progress", first["new_status"])
		assert.NotContains(t, first, "error")

		last := results[2].(map[string]any)
		assert.Equal(t, false, last["success"])
		assert.Equal(t, "done", last["previous_status"])
		assert.NotContains(t, last, "new_status")
		assert.Equal(t, "Invalid transition from 'done' to 'in_progress'", last["error"])
	})

	tests := []struct {
		name     string
		body     any
		svcErr   error
		wantCode int
	}{
		{name: "empty id list", body: map[string]any{"task_ids": []int64{}, "status": "done"}, wantCode: http.StatusUnprocessableEntity},
		{name: "missing status", body: map[string]any{"task_ids": []int64{1}}, wantCode: http.StatusUnprocessableEntity},
		{name: "non-positive id", body: map[string]any{"task_ids": []int64{1, -2}, "status": "done"}, wantCode: http.StatusUnprocessableEntity},
		{
			name:     "too many ids",
			body:     map[string]any{"task_ids": []int64{1, 2}, "status": "done"},
			svcErr:   domain.NewValidationError("task_ids", "must contain at most 1 ids", service.ErrBulkTooLarge),
			wantCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mocks.MockTaskService{Err: tt.svcErr}
			if tt.svcErr == nil {
				svc.BulkTransitionFn = func(context.Context, int64, []int64, domain.Status) (*service.BulkResult, error) {
					t.Fatal("service must not be called")
					return nil, nil
				}
			}

			rec := do(t, newTaskRouter(svc, 1), http.MethodPost, "/tasks/bulk/transition", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, shared.CodeValidation, decodeError(t, rec).Error.Code)
		})
	}
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	var got store.TaskFilter
	svc := &mocks.MockTaskService{
		ListFn: func(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error) {
			got = filter
			return &store.TaskPage{
				Items: []*domain.TaskView{sampleView(1, domain.StatusTodo), sampleView(2, domain.StatusTodo)},
				Total: 7,
			}, nil
		},
	}

	rec := do(t, newTaskRouter(svc, 1), http.MethodGet,
		"/tasks?status=todo&assignee_id=2&search=report&page=2&per_page=2", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, got.Status)
	assert.Equal(t, domain.StatusTodo, *got.Status)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, int64(2), *got.AssigneeID)
	assert.Nil(t, got.OwnerID)
	assert.Equal(t, "report", got.Search)

	var resp TaskListResponse
	decodeInto(t, rec, &resp)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, PageMeta{Page: 2, PerPage: 2, TotalItems: 7, TotalPages: 4, HasNext: true, HasPrev: true}, resp.Meta)

	rec = do(t, newTaskRouter(svc, 1), http.MethodGet, "/tasks?per_page=500", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "per_page", decodeError(t, rec).Error.Details["field"])
}

func TestListTasks_EmptyPageEncodesEmptyArray(t *testing.T) {
	t.Parallel()

	svc := &mocks.MockTaskService{
		ListFn: func(context.Context, store.TaskFilter) (*store.TaskPage, error) {
			return &store.TaskPage{}, nil
		},
	}

	rec := do(t, newTaskRouter(svc, 1), http.MethodGet, "/tasks", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
	assert.Contains(t, rec.Body.String(), `"total_pages":0`)
}

func TestNewTaskHandler_PanicsOnMissingDependencies(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewTaskHandler(nil, quietLogger) })
	assert.Panics(t, func() { NewTaskHandler(&mocks.MockTaskService{}, nil) })
}
