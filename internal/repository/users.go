package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zeedivx/web-starter/internal/apperr"
	"github.com/zeedivx/web-starter/internal/model"
)

const userColumns = `id, email, username, hashed_password, is_active, is_superuser,
	first_name, last_name, created_at, updated_at, deleted_at`

// UserRepository persists users. Soft-deleted rows are invisible to every
// method except the unique-constraint backstop in Create.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.HashedPassword, &u.IsActive, &u.IsSuperuser,
		&u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts the user and returns the stored row with its database
// assigned timestamps.
func (r *UserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, email, username, hashed_password, is_active, is_superuser, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		u.ID, u.Email, u.Username, u.HashedPassword, u.IsActive, u.IsSuperuser, u.FirstName, u.LastName,
	)

	created, err := scanUser(row)
	if err != nil {
		return nil, mapError("insert user", err)
	}
	return created, nil
}

// GetByID returns the user or RECORD_NOT_FOUND.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.RecordNotFound("User", id)
	}
	if err != nil {
		return nil, mapError("select user by id", err)
	}
	return u, nil
}

// GetByEmail returns (nil, nil) when no live user has the address, so
// callers can distinguish absence from failure.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND deleted_at IS NULL`, email)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("select user by email", err)
	}
	return u, nil
}

// GetByUsername returns (nil, nil) when no live user has the username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 AND deleted_at IS NULL`, username)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("select user by username", err)
	}
	return u, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`, email,
	).Scan(&exists)
	if err != nil {
		return false, mapError("check email exists", err)
	}
	return exists, nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND deleted_at IS NULL)`, username,
	).Scan(&exists)
	if err != nil {
		return false, mapError("check username exists", err)
	}
	return exists, nil
}

// ListActive returns active users ordered newest first.
func (r *UserRepository) ListActive(ctx context.Context, limit, offset int) ([]*model.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE is_active AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, mapError("list active users", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError("scan user row", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate user rows", err)
	}
	return users, nil
}

func (r *UserRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE is_active AND deleted_at IS NULL`,
	).Scan(&count)
	if err != nil {
		return 0, mapError("count active users", err)
	}
	return count, nil
}

// Update writes every mutable column and returns the stored row.
func (r *UserRepository) Update(ctx context.Context, u *model.User) (*model.User, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET email = $2, username = $3, hashed_password = $4, is_active = $5,
			is_superuser = $6, first_name = $7, last_name = $8, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+userColumns,
		u.ID, u.Email, u.Username, u.HashedPassword, u.IsActive, u.IsSuperuser, u.FirstName, u.LastName,
	)

	updated, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.RecordNotFound("User", u.ID)
	}
	if err != nil {
		return nil, mapError("update user", err)
	}
	return updated, nil
}

// SoftDelete hides the user from subsequent queries without dropping the
// row.
func (r *UserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapError("soft delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.RecordNotFound("User", id)
	}
	return nil
}
