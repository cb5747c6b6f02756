package mocks

import (
	"context"

	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/service"
	"github.com/phrazzld/task-tracker-api/internal/store"
)

// MockTaskService implements service.TaskService for handler tests. Methods
// without a hook return Err.
type MockTaskService struct {
	CreateFn         func(ctx context.Context, actorID int64, params service.CreateTaskParams) (*domain.TaskView, error)
	GetFn            func(ctx context.Context, taskID int64) (*domain.TaskView, error)
	ListFn           func(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error)
	UpdateFn         func(ctx context.Context, taskID, actorID int64, params service.UpdateTaskParams) (*domain.TaskView, error)
	DeleteFn         func(ctx context.Context, taskID, actorID int64) error
	ForceDeleteFn    func(ctx context.Context, taskID, actorID int64) error
	AssignFn         func(ctx context.Context, taskID, actorID int64, assigneeID *int64) (*domain.TaskView, error)
	TransitionFn     func(ctx context.Context, taskID, actorID int64, target domain.Status) (*domain.TaskView, error)
	BulkTransitionFn func(ctx context.Context, actorID int64, taskIDs []int64, target domain.Status) (*service.BulkResult, error)

	Err error
}

var _ service.TaskService = (*MockTaskService)(nil)

// Create implements service.TaskService
func (m *MockTaskService) Create(ctx context.Context, actorID int64, params service.CreateTaskParams) (*domain.TaskView, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, actorID, params)
	}
	return nil, m.Err
}

// Get implements service.TaskService
func (m *MockTaskService) Get(ctx context.Context, taskID int64) (*domain.TaskView, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, taskID)
	}
	return nil, m.Err
}

// List implements service.TaskService
func (m *MockTaskService) List(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, m.Err
}

// Update implements service.TaskService
func (m *MockTaskService) Update(ctx context.Context, taskID, actorID int64, params service.UpdateTaskParams) (*domain.TaskView, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, taskID, actorID, params)
	}
	return nil, m.Err
}

// Delete implements service.TaskService
func (m *MockTaskService) Delete(ctx context.Context, taskID, actorID int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, taskID, actorID)
	}
	return m.Err
}

// ForceDelete implements service.TaskService
func (m *MockTaskService) ForceDelete(ctx context.Context, taskID, actorID int64) error {
	if m.ForceDeleteFn != nil {
		return m.ForceDeleteFn(ctx, taskID, actorID)
	}
	return m.Err
}

// Assign implements service.TaskService
func (m *MockTaskService) Assign(ctx context.Context, taskID, actorID int64, assigneeID *int64) (*domain.TaskView, error) {
	if m.AssignFn != nil {
		return m.AssignFn(ctx, taskID, actorID, assigneeID)
	}
	return nil, m.Err
}

// Transition implements service.TaskService
func (m *MockTaskService) Transition(ctx context.Context, taskID, actorID int64, target domain.Status) (*domain.TaskView, error) {
	if m.TransitionFn != nil {
		return m.TransitionFn(ctx, taskID, actorID, target)
	}
	return nil, m.Err
}

// BulkTransition implements service.TaskService
func (m *MockTaskService) BulkTransition(ctx context.Context, actorID int64, taskIDs []int64, target domain.Status) (*service.BulkResult, error) {
	if m.BulkTransitionFn != nil {
		return m.BulkTransitionFn(ctx, actorID, taskIDs, target)
	}
	return nil, m.Err
}
