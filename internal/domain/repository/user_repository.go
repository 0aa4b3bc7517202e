package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-users-contract/internal/domain/entity"
)

// ErrNotFound is returned by stores when no user matches.
var ErrNotFound = errors.New("user not found")

// NameFilter narrows FindByNames. Empty fields match everything; set fields
// match anywhere in the name with Unicode case folding, and all set fields
// must match. An empty filter lists every user.
type NameFilter struct {
	FirstName string
	LastName  string
}

// Empty reports whether no filter field is set.
func (f NameFilter) Empty() bool {
	return f.FirstName == "" && f.LastName == ""
}

// UserRepository defines the interface for user-related storage operations.
// List and FindByNames return users ordered by ID.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	FindByNames(ctx context.Context, f NameFilter) ([]*entity.User, error)
}
