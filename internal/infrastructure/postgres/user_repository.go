package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-users-contract/internal/domain/entity"
	"github.com/oksasatya/go-users-contract/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const selectUsers = `SELECT id, first_name, last_name, created_at, updated_at FROM users`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, u.FirstName, u.LastName)

	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u := &entity.User{}

	row := r.pool.QueryRow(ctx, selectUsers+` WHERE id = $1`, id)
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	return r.FindByNames(ctx, repository.NameFilter{})
}

func (r *UserRepository) FindByNames(ctx context.Context, f repository.NameFilter) ([]*entity.User, error) {
	var (
		where []string
		args  []any
	)
	if f.FirstName != "" {
		args = append(args, containsPattern(f.FirstName))
		where = append(where, "first_name ILIKE $"+strconv.Itoa(len(args)))
	}
	if f.LastName != "" {
		args = append(args, containsPattern(f.LastName))
		where = append(where, "last_name ILIKE $"+strconv.Itoa(len(args)))
	}
	q := selectUsers
	if !f.Empty() {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.User, error) {
		u := &entity.User{}
		err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
		return u, err
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*entity.User{}
	}
	return users, nil
}

// containsPattern escapes ILIKE wildcards in s and matches it anywhere.
// Backslash is the default escape character in Postgres patterns.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

var _ repository.UserRepository = (*UserRepository)(nil)
