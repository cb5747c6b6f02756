package memory

import (
	"sync"

	"github.com/phrazzld/task-tracker-api/internal/domain"
)

// DB is the shared state behind TaskStore and UserStore.
type DB struct {
	// txMu serializes writers. Every task write, transactional or not, holds it.
	txMu sync.Mutex

	mu         sync.RWMutex
	tasks      map[int64]*domain.Task
	users      map[int64]*domain.User
	nextTaskID int64
	nextUserID int64
}

// NewDB creates an empty in-memory database.
func NewDB() *DB {
	return &DB{
		tasks: make(map[int64]*domain.Task),
		users: make(map[int64]*domain.User),
	}
}

// user returns a copy of the user with id, or nil.
func (db *DB) user(id int64) *domain.User {
	db.mu.RLock()
	defer db.mu.RUnlock()
	u, ok := db.users[id]
	if !ok {
		return nil
	}
	c := *u
	return &c
}

func (db *DB) brief(id int64) *domain.UserBrief {
	u := db.user(id)
	if u == nil {
		return nil
	}
	b := u.Brief()
	return &b
}
