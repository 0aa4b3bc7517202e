package entity

import (
	"time"
)

// User is the aggregate root for the users domain.
// ID and timestamps are assigned by the store.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins the name parts with a single space.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
