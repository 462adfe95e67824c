package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const (
	DefaultPage      = 1
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// ProfileUpdate holds the optional profile fields. Nil and empty values
// leave the stored value as is.
type ProfileUpdate struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// PageQuery is a 1-based page request. Zero or negative values select the
// defaults.
type PageQuery struct {
	Page  int
	Limit int
}

type UserPage struct {
	Users []domain.User
	Total int64
	Page  int
	Pages int
	Count int
}

// PasswordHasher is the part of cryptox.Hasher account management needs.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

type AccountService struct {
	Store  store.Store
	Hasher PasswordHasher
}

// GetProfile re-reads the caller's record.
func (s *AccountService) GetProfile(ctx context.Context, p domain.Principal) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, p.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// UpdateProfile changes the caller's name and email. A new email must not
// belong to another account.
func (s *AccountService) UpdateProfile(ctx context.Context, p domain.Principal, in ProfileUpdate) (domain.User, error) {
	var name, email string
	if in.FullName != nil {
		name = strings.TrimSpace(*in.FullName)
		if name != "" {
			if err := validateFullName(name); err != nil {
				return domain.User{}, err
			}
		}
	}
	if in.Email != nil {
		email = normalizeEmail(*in.Email)
		if email != "" {
			if err := validateEmail(email); err != nil {
				return domain.User{}, err
			}
		}
	}

	users := s.Store.Users()
	return updateUser(ctx, users, p.ID, func(u *domain.User) error {
		changed := false

		if email != "" && email != u.Email {
			_, err := users.GetUserByEmailExcluding(ctx, email, u.ID)
			if err == nil {
				return ErrDuplicateEmail
			}
			if !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("check email: %w", err)
			}
			u.Email = email
			changed = true
		}

		if name != "" && name != u.FullName {
			u.FullName = name
			changed = true
		}

		if !changed {
			return errUnchanged
		}
		return nil
	})
}

// ChangePassword replaces the caller's password after checking the current
// one.
func (s *AccountService) ChangePassword(ctx context.Context, p domain.Principal, in ChangePasswordInput) error {
	if err := in.validate(); err != nil {
		return err
	}

	var hash string
	_, err := updateUser(ctx, s.Store.Users(), p.ID, func(u *domain.User) error {
		if !s.Hasher.Verify(in.CurrentPassword, u.PasswordHash) {
			return ErrCurrentPasswordIncorrect
		}
		if hash == "" {
			h, err := s.Hasher.Hash(in.NewPassword)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			hash = h
		}
		u.PasswordHash = hash
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("user_id", p.ID))
	return nil
}

// ListUsers returns one page of accounts, newest first.
func (s *AccountService) ListUsers(ctx context.Context, q PageQuery) (UserPage, error) {
	page, limit := q.Page, q.Limit
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	limit = min(limit, MaxPageLimit)

	users := s.Store.Users()
	total, err := users.CountUsers(ctx)
	if err != nil {
		return UserPage{}, fmt.Errorf("count users: %w", err)
	}

	out := UserPage{
		Users: []domain.User{},
		Total: total,
		Page:  page,
		Pages: int((total + int64(limit) - 1) / int64(limit)),
	}
	// Pages past the end are answered without a query; this also keeps
	// (page-1)*limit within int for any page the caller sends.
	if page > out.Pages {
		return out, nil
	}

	list, err := users.ListUsers(ctx, (page-1)*limit, limit)
	if err != nil {
		return UserPage{}, fmt.Errorf("list users: %w", err)
	}
	out.Users = list
	out.Count = len(list)
	return out, nil
}

// ActivateUser re-enables an inactive account.
func (s *AccountService) ActivateUser(ctx context.Context, admin domain.Principal, id string) (domain.User, error) {
	u, err := updateUser(ctx, s.Store.Users(), id, func(u *domain.User) error {
		if u.Status == domain.StatusActive {
			return ErrAlreadyActive
		}
		u.Status = domain.StatusActive
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user activated",
		slog.String("user_id", u.ID),
		slog.String("admin_id", admin.ID),
	)
	return u, nil
}

// DeactivateUser disables an account. Admins cannot disable themselves.
func (s *AccountService) DeactivateUser(ctx context.Context, admin domain.Principal, id string) (domain.User, error) {
	u, err := updateUser(ctx, s.Store.Users(), id, func(u *domain.User) error {
		if u.ID == admin.ID {
			return ErrSelfDeactivation
		}
		if u.Status == domain.StatusInactive {
			return ErrAlreadyInactive
		}
		u.Status = domain.StatusInactive
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user deactivated",
		slog.String("user_id", u.ID),
		slog.String("admin_id", admin.ID),
	)
	return u, nil
}
