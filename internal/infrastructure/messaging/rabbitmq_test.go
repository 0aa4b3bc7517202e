package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-users-contract/internal/domain/entity"
	"github.com/oksasatya/go-users-contract/internal/domain/event"
)

func TestHandle(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := event.NewUserCreated(&entity.User{ID: 4, FirstName: "Jane", LastName: "Doe", CreatedAt: ts, UpdatedAt: ts}, ts)
	body, err := json.Marshal(e)
	require.NoError(t, err)

	var got event.UserEvent
	err = Handle(ctx, body, func(_ context.Context, e event.UserEvent) error {
		got = e
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.UserID)
	assert.Equal(t, "Jane Doe", got.User().FullName())
	assert.Equal(t, ack, outcome(err))
}

func TestHandle_Malformed(t *testing.T) {
	called := false
	h := func(context.Context, event.UserEvent) error { called = true; return nil }

	for _, body := range []string{`not json`, `{"type":"user.deleted","user_id":1}`, `{"type":"user.created"}`} {
		err := Handle(context.Background(), []byte(body), h)
		assert.ErrorIs(t, err, ErrMalformed, body)
		assert.Equal(t, drop, outcome(err))
	}
	assert.False(t, called)
}

func TestHandle_HandlerErrorRequeues(t *testing.T) {
	body := []byte(`{"type":"user.created","user_id":1}`)
	err := Handle(context.Background(), body, func(context.Context, event.UserEvent) error {
		return errors.New("es down")
	})
	assert.EqualError(t, err, "es down")
	assert.Equal(t, requeue, outcome(err))
}
