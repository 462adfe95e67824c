package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/idx"
)

// maxSaveAttempts bounds the read-modify-write loop when concurrent writers
// keep bumping the version.
const maxSaveAttempts = 3

// errUnchanged lets a mutation report that nothing needs saving.
var errUnchanged = errors.New("unchanged")

// updateUser loads the user, applies fn and saves with a version check,
// retrying from a fresh read on conflict. fn sees the current record on
// every attempt, so its preconditions are re-checked after a lost race.
func updateUser(ctx context.Context, users store.Users, id string, fn func(u *domain.User) error) (domain.User, error) {
	if !idx.Valid(id) {
		return domain.User{}, ErrUserNotFound
	}

	var lastErr error
	for range maxSaveAttempts {
		u, err := users.GetUserByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		if err != nil {
			return domain.User{}, fmt.Errorf("load user: %w", err)
		}

		if err := fn(&u); err != nil {
			if errors.Is(err, errUnchanged) {
				return u, nil
			}
			return domain.User{}, err
		}

		saved, err := users.SaveUser(ctx, u)
		switch {
		case err == nil:
			return saved, nil
		case errors.Is(err, store.ErrConflict):
			lastErr = err
			continue
		case errors.Is(err, store.ErrNotFound):
			return domain.User{}, ErrUserNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.User{}, ErrDuplicateEmail
		default:
			return domain.User{}, fmt.Errorf("save user: %w", err)
		}
	}
	return domain.User{}, fmt.Errorf("save user after %d attempts: %w", maxSaveAttempts, lastErr)
}
