package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	err := r.q.CreateUser(ctx, gen.CreateUserParams{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Status:       string(u.Status),
		Version:      u.Version,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	})
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByEmailExcluding(ctx context.Context, email, excludeID string) (domain.User, error) {
	row, err := r.q.GetUserByEmailExcluding(ctx, gen.GetUserByEmailExcludingParams{
		Email: email,
		ID:    excludeID,
	})
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) SaveUser(ctx context.Context, u domain.User) (domain.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	n, err := r.q.SaveUser(ctx, gen.SaveUserParams{
		FullName:     u.FullName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Status:       string(u.Status),
		UpdatedAt:    now,
		ID:           u.ID,
		Version:      u.Version,
	})
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}

	if n == 0 {
		// Either the row is gone or someone saved it first.
		if _, err := r.q.GetUserVersion(ctx, u.ID); err != nil {
			return domain.User{}, mapNotFound(err)
		}
		return domain.User{}, store.ErrConflict
	}

	u.Version++
	u.UpdatedAt = now
	return u, nil
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	return r.q.CountUsers(ctx)
}

func (r *usersRepo) ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error) {
	rows, err := r.q.ListUsers(ctx, gen.ListUsersParams{
		Limit:  int64(limit),
		Offset: int64(skip),
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapUser(row))
	}
	return out, nil
}
