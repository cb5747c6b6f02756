package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/store"
)

// FaultyTaskStore wraps a working store.TaskStore and lets tests replace
// single methods, typically to inject errors. Unset hooks delegate to Inner.
// The store handed to InTx callbacks is wrapped too, so hooks also fire
// inside transactions.
type FaultyTaskStore struct {
	Inner store.TaskStore

	GetByIDForUpdateFn func(ctx context.Context, id int64) (*domain.Task, error)
	UpdateFn           func(ctx context.Context, task *domain.Task) error
	ListFn             func(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error)
	InTxErr            error

	mu          sync.Mutex
	UpdateCalls int
	DeleteCalls int
}

var _ store.TaskStore = (*FaultyTaskStore)(nil)

func (f *FaultyTaskStore) bound(inner store.TaskStore) *FaultyTaskStore {
	return &FaultyTaskStore{
		Inner:              inner,
		GetByIDForUpdateFn: f.GetByIDForUpdateFn,
		UpdateFn:           f.UpdateFn,
		ListFn:             f.ListFn,
	}
}

// Create implements store.TaskStore.
func (f *FaultyTaskStore) Create(ctx context.Context, task *domain.Task) error {
	return f.Inner.Create(ctx, task)
}

// GetByID implements store.TaskStore.
func (f *FaultyTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return f.Inner.GetByID(ctx, id)
}

// GetByIDForUpdate implements store.TaskStore.
func (f *FaultyTaskStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Task, error) {
	if f.GetByIDForUpdateFn != nil {
		return f.GetByIDForUpdateFn(ctx, id)
	}
	return f.Inner.GetByIDForUpdate(ctx, id)
}

// GetView implements store.TaskStore.
func (f *FaultyTaskStore) GetView(ctx context.Context, id int64) (*domain.TaskView, error) {
	return f.Inner.GetView(ctx, id)
}

// Update implements store.TaskStore.
func (f *FaultyTaskStore) Update(ctx context.Context, task *domain.Task) error {
	f.mu.Lock()
	f.UpdateCalls++
	f.mu.Unlock()
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, task)
	}
	return f.Inner.Update(ctx, task)
}

// Delete implements store.TaskStore.
func (f *FaultyTaskStore) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.DeleteCalls++
	f.mu.Unlock()
	return f.Inner.Delete(ctx, id)
}

// List implements store.TaskStore.
func (f *FaultyTaskStore) List(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx, filter)
	}
	return f.Inner.List(ctx, filter)
}

// InTx implements store.TaskStore. Call counts made inside the transaction
// are added to f once fn returns.
func (f *FaultyTaskStore) InTx(ctx context.Context, fn func(ctx context.Context, tasks store.TaskStore) error) error {
	if f.InTxErr != nil {
		return f.InTxErr
	}
	return f.Inner.InTx(ctx, func(ctx context.Context, tx store.TaskStore) error {
		wrapped := f.bound(tx)
		err := fn(ctx, wrapped)
		f.mu.Lock()
		f.UpdateCalls += wrapped.UpdateCalls
		f.DeleteCalls += wrapped.DeleteCalls
		f.mu.Unlock()
		return err
	})
}

// Calls returns the number of Update and Delete calls seen so far.
func (f *FaultyTaskStore) Calls() (updates, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.UpdateCalls, f.DeleteCalls
}
