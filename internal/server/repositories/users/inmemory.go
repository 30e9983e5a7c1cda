package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/keygate/internal/common"
	"github.com/dmitrijs2005/keygate/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository keeps users in a map. It is used for development runs
// and tests; the data is lost on restart.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
	now   func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]models.User), now: time.Now}
}

func (r *InMemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserName]; ok {
		return nil, common.ErrAlreadyExists
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = r.now().UTC()
	r.users[user.UserName] = *user

	return user, nil
}

func (r *InMemoryRepository) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

// GetUserByLoginForUpdate does not lock; the in-memory transactor
// serializes whole units of work instead.
func (r *InMemoryRepository) GetUserByLoginForUpdate(ctx context.Context, login string) (*models.User, error) {
	return r.GetUserByLogin(ctx, login)
}

func (r *InMemoryRepository) SetAdmin(_ context.Context, login string, isAdmin bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.IsAdmin = isAdmin
	r.users[login] = u
	return &u, nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		u := u
		result = append(result, &u)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].UserName < result[j].UserName
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Delete removes a user. Only the in-memory store offers it; tests use it
// to model an account that disappears while its tokens are still valid.
func (r *InMemoryRepository) Delete(login string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, login)
}
