package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/oksasatya/go-users-contract/internal/domain/entity"
	"github.com/oksasatya/go-users-contract/internal/domain/repository"
	"github.com/oksasatya/go-users-contract/internal/infrastructure/migrations"
)

// setupPostgres starts a throwaway Postgres and returns a migrated store.
// Set USERS_PG_INTEGRATION=1 to run; it needs a Docker daemon.
func setupPostgres(t *testing.T) *UserRepository {
	t.Helper()
	if os.Getenv("USERS_PG_INTEGRATION") == "" {
		t.Skip("set USERS_PG_INTEGRATION=1 to run postgres integration tests")
	}
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "users",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "could not start container")
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/users?sslmode=disable", host, port.Port())

	require.NoError(t, migrations.Postgres(dsn, nil))

	pool, err := NewPool(ctx, dsn, PoolOptions{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewUserRepository(pool)
}

func TestUserRepository_Postgres(t *testing.T) {
	r := setupPostgres(t)
	ctx := context.Background()

	users, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	jane := &entity.User{FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, r.Create(ctx, jane))
	assert.Positive(t, jane.ID)
	assert.False(t, jane.CreatedAt.IsZero())

	for _, n := range [][2]string{{"Alice", "Smith"}, {"Alicia", "Keys"}, {"50%", "Off"}} {
		require.NoError(t, r.Create(ctx, &entity.User{FirstName: n[0], LastName: n[1]}))
	}

	got, err := r.GetByID(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doe", got.LastName)

	_, err = r.GetByID(ctx, -1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	found, err := r.FindByNames(ctx, repository.NameFilter{FirstName: "ALI"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Alice", found[0].FirstName)

	found, err = r.FindByNames(ctx, repository.NameFilter{FirstName: "%"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "50%", found[0].FirstName)

	found, err = r.FindByNames(ctx, repository.NameFilter{FirstName: "ali", LastName: "keys"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Less(t, all[0].ID, all[3].ID)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, `%Ab\%c\_d\\%`, containsPattern(`Ab%c_d\`))
}
