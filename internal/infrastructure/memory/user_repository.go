package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-users-contract/internal/domain/entity"
	"github.com/oksasatya/go-users-contract/internal/domain/repository"
)

// DemoUsers are inserted by NewSeededUserRepository and cmd/seed.
var DemoUsers = []entity.User{
	{FirstName: "Alice", LastName: "Smith"},
	{FirstName: "Bob", LastName: "Johnson"},
	{FirstName: "Charlie", LastName: "Brown"},
}

// UserRepository keeps users in process memory. It is used for local runs
// and tests; data is lost on restart.
type UserRepository struct {
	mu     sync.RWMutex
	users  []entity.User
	nextID int64
	now    func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1, now: time.Now}
}

// NewSeededUserRepository returns a store holding DemoUsers.
func NewSeededUserRepository() *UserRepository {
	r := NewUserRepository()
	for i := range DemoUsers {
		u := DemoUsers[i]
		_ = r.Create(context.Background(), &u)
	}
	return r
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	r.nextID++
	r.users = append(r.users, *u)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	return r.FindByNames(ctx, repository.NameFilter{})
}

func (r *UserRepository) FindByNames(_ context.Context, f repository.NameFilter) ([]*entity.User, error) {
	first := strings.ToLower(f.FirstName)
	last := strings.ToLower(f.LastName)

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.users))
	for i := range r.users {
		u := r.users[i]
		if !f.Empty() && !matches(u, first, last) {
			continue
		}
		out = append(out, &u)
	}
	return out, nil
}

func matches(u entity.User, first, last string) bool {
	if first != "" && !strings.Contains(strings.ToLower(u.FirstName), first) {
		return false
	}
	return last == "" || strings.Contains(strings.ToLower(u.LastName), last)
}

var _ repository.UserRepository = (*UserRepository)(nil)
