package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlitedrv "modernc.org/sqlite"

	"github.com/oksasatya/go-users-contract/internal/domain/entity"
	"github.com/oksasatya/go-users-contract/internal/domain/repository"
)

// SQLite's built-in lower() folds ASCII only; ulower folds like
// strings.ToLower so name filters match the other stores.
func init() {
	err := sqlitedrv.RegisterDeterministicScalarFunction("ulower", 1,
		func(_ *sqlitedrv.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
	if err != nil {
		panic(err)
	}
}

// Open opens a SQLite database file. ":memory:" gives a private in-memory
// database held by a single connection.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

type UserRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

const selectUsers = `SELECT id, first_name, last_name, created_at, updated_at FROM users`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	now := r.now().UTC()
	ts := now.Format(time.RFC3339Nano)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, u.FirstName, u.LastName, ts, ts)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, selectUsers+` WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		where = append(where, `ulower(first_name) LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(f.FirstName))
	}
	if f.LastName != "" {
		where = append(where, `ulower(last_name) LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(f.LastName))
	}
	q := selectUsers
	if !f.Empty() {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*entity.User, error) {
	var (
		u                    entity.User
		createdAt, updatedAt string
		err                  error
	)
	if err = s.Scan(&u.ID, &u.FirstName, &u.LastName, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("user %d: created_at: %w", u.ID, err)
	}
	if u.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("user %d: updated_at: %w", u.ID, err)
	}
	return &u, nil
}

// containsPattern builds a lower-cased LIKE pattern matching s anywhere,
// with LIKE wildcards in s escaped.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

var _ repository.UserRepository = (*UserRepository)(nil)
