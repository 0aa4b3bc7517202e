package application

import (
	"errors"
	"fmt"
)

var ErrUserNotFound = errors.New("user not found")

// UserNotFoundError names the id that was looked up.
type UserNotFoundError struct {
	ID int64
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user with id %d not found", e.ID)
}

func (e *UserNotFoundError) Unwrap() error { return ErrUserNotFound }
