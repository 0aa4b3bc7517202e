package event

import (
	"time"

	"github.com/oksasatya/go-users-contract/internal/domain/entity"
)

// UserCreated is the type of the event published after a user is stored.
const UserCreated = "user.created"

// UserEvent is the message body on the user events queue.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewUserCreated(u *entity.User, at time.Time) UserEvent {
	return UserEvent{
		Type:       UserCreated,
		UserID:     u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
		OccurredAt: at.UTC(),
	}
}

// User rebuilds the stored user carried by the event.
func (e UserEvent) User() *entity.User {
	return &entity.User{
		ID:        e.UserID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
