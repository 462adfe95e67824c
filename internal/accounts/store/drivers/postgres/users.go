package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

type usersRepo struct {
	pool *pgxpool.Pool
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID,
		u.FullName,
		u.Email,
		u.PasswordHash,
		string(u.Role),
		string(u.Status),
		u.Version,
		u.CreatedAt.UTC(),
		u.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	return u, mapNotFound(err)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	return u, mapNotFound(err)
}

func (r *usersRepo) GetUserByEmailExcluding(ctx context.Context, email, excludeID string) (domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND id <> $2`,
		email, excludeID,
	)
	u, err := scanUser(row)
	return u, mapNotFound(err)
}

func (r *usersRepo) SaveUser(ctx context.Context, u domain.User) (domain.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET full_name = $1, email = $2, password_hash = $3, status = $4,
		    version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7`,
		u.FullName,
		u.Email,
		u.PasswordHash,
		string(u.Status),
		now,
		u.ID,
		u.Version,
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}

	if tag.RowsAffected() == 0 {
		var version int64
		err := r.pool.QueryRow(ctx, `SELECT version FROM users WHERE id = $1`, u.ID).Scan(&version)
		if err != nil {
			return domain.User{}, mapNotFound(err)
		}
		return domain.User{}, store.ErrConflict
	}

	u.Version++
	u.UpdatedAt = now
	return u, nil
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *usersRepo) ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`,
		limit, skip,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
