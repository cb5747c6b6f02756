package memory

import (
	"context"
	"strings"

	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/store"
)

// UserStore is an in-memory store.UserStore.
type UserStore struct {
	db *DB
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore returns a UserStore over db.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if user.HashedPassword == "" {
		return store.NewStoreError("user", "create", "hashed password required", store.ErrInvalidEntity)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, existing := range s.db.users {
		if strings.ToLower(existing.Email) == email {
			return store.ErrEmailExists
		}
	}

	s.db.nextUserID++
	user.ID = s.db.nextUserID
	stored := *user
	stored.Password = ""
	s.db.users[user.ID] = &stored
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u := s.db.user(id); u != nil {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements store.UserStore.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.db.users {
		if strings.ToLower(u.Email) == email {
			c := *u
			return &c, nil
		}
	}
	return nil, store.ErrUserNotFound
}
