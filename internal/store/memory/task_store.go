package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/store"
)

// TaskStore is an in-memory store.TaskStore.
type TaskStore struct {
	db *DB
	tx *txState
}

// txState is the working copy a transaction mutates before commit.
type txState struct {
	tasks  map[int64]*domain.Task
	nextID int64
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore returns a TaskStore over db.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

// InTx implements store.TaskStore.
func (s *TaskStore) InTx(ctx context.Context, fn func(ctx context.Context, tasks store.TaskStore) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}

	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	s.db.mu.RLock()
	state := &txState{
		tasks:  make(map[int64]*domain.Task, len(s.db.tasks)),
		nextID: s.db.nextTaskID,
	}
	for id, t := range s.db.tasks {
		state.tasks[id] = t.Clone()
	}
	s.db.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(ctx, &TaskStore{db: s.db, tx: state}); err != nil {
		return err
	}

	s.db.mu.Lock()
	s.db.tasks = state.tasks
	s.db.nextTaskID = state.nextID
	s.db.mu.Unlock()
	return nil
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	return s.write(ctx, func(state *txState) error {
		if err := s.checkRefs(task); err != nil {
			return err
		}
		state.nextID++
		task.ID = state.nextID
		state.tasks[task.ID] = task.Clone()
		return nil
	})
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if s.tx != nil {
		t, ok := s.tx.tasks[id]
		if !ok {
			return nil, store.ErrTaskNotFound
		}
		return t.Clone(), nil
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	t, ok := s.db.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return t.Clone(), nil
}

// GetByIDForUpdate implements store.TaskStore. Transactions are already
// exclusive, so no extra locking is needed.
func (s *TaskStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Task, error) {
	return s.GetByID(ctx, id)
}

// GetView implements store.TaskStore.
func (s *TaskStore) GetView(ctx context.Context, id int64) (*domain.TaskView, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(t), nil
}

// Update implements store.TaskStore.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	return s.write(ctx, func(state *txState) error {
		existing, ok := state.tasks[task.ID]
		if !ok {
			return store.ErrTaskNotFound
		}
		if err := s.checkRefs(task); err != nil {
			return err
		}
		updated := task.Clone()
		updated.OwnerID = existing.OwnerID
		updated.CreatedAt = existing.CreatedAt
		state.tasks[task.ID] = updated
		return nil
	})
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	return s.write(ctx, func(state *txState) error {
		if _, ok := state.tasks[id]; !ok {
			return store.ErrTaskNotFound
		}
		delete(state.tasks, id)
		return nil
	})
}

// List implements store.TaskStore.
func (s *TaskStore) List(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error) {
	matched := s.match(filter)

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	page := &store.TaskPage{Total: len(matched), Items: []*domain.TaskView{}}
	start := filter.Offset()
	if start >= len(matched) {
		return page, nil
	}
	end := len(matched)
	if filter.PerPage > 0 && start+filter.PerPage < end {
		end = start + filter.PerPage
	}
	for _, t := range matched[start:end] {
		page.Items = append(page.Items, s.view(t))
	}
	return page, nil
}

// match returns copies of the tasks that pass filter, in no particular order.
func (s *TaskStore) match(filter store.TaskFilter) []*domain.Task {
	var source map[int64]*domain.Task
	if s.tx != nil {
		source = s.tx.tasks
	} else {
		s.db.mu.RLock()
		defer s.db.mu.RUnlock()
		source = s.db.tasks
	}

	search := strings.ToLower(filter.Search)
	matched := make([]*domain.Task, 0, len(source))
	for _, t := range source {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.OwnerID != nil && t.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		matched = append(matched, t.Clone())
	}
	return matched
}

// write runs op against the transaction state, opening a single-statement
// transaction when the store is not already bound to one.
func (s *TaskStore) write(ctx context.Context, op func(state *txState) error) error {
	if s.tx != nil {
		return op(s.tx)
	}
	return s.InTx(ctx, func(ctx context.Context, tasks store.TaskStore) error {
		return op(tasks.(*TaskStore).tx)
	})
}

// checkRefs mirrors the foreign keys on tasks.owner_id and tasks.assignee_id.
func (s *TaskStore) checkRefs(task *domain.Task) error {
	if s.db.user(task.OwnerID) == nil {
		return fmt.Errorf("%w: owner %d does not exist", store.ErrInvalidEntity, task.OwnerID)
	}
	if task.AssigneeID != nil && s.db.user(*task.AssigneeID) == nil {
		return fmt.Errorf("%w: assignee %d does not exist", store.ErrInvalidEntity, *task.AssigneeID)
	}
	return nil
}

func (s *TaskStore) view(t *domain.Task) *domain.TaskView {
	v := &domain.TaskView{Task: *t}
	if owner := s.db.brief(t.OwnerID); owner != nil {
		v.Owner = *owner
	}
	if t.AssigneeID != nil {
		v.Assignee = s.db.brief(*t.AssigneeID)
	}
	return v
}

func matchesSearch(t *domain.Task, needle string) bool {
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), needle)
}
