package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const (
	defaultAdminName        = "Administrator"
	generatedPasswordLength = 16
)

// ErrBootstrapNotAdmin means the configured admin email belongs to an
// ordinary account. Roles are never changed at startup.
var ErrBootstrapNotAdmin = errors.New("bootstrap: configured admin email belongs to a non-admin account")

// AdminSeed is the administrator account requested by configuration.
type AdminSeed struct {
	Email    string
	Password string // generated when empty
	FullName string
}

type BootstrapResult struct {
	User        domain.User
	Created     bool
	Reactivated bool

	// GeneratedPassword is set only when the account was created without a
	// configured password. It is not stored anywhere else.
	GeneratedPassword string
}

type BootstrapService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Now    func() time.Time
}

// EnsureAdmin makes sure the seeded admin exists and is active. An empty
// seed email disables bootstrapping.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, seed AdminSeed) (BootstrapResult, error) {
	l := slogx.FromContext(ctx)

	email := normalizeEmail(seed.Email)
	if email == "" {
		return BootstrapResult{}, nil
	}
	if err := validateEmail(email); err != nil {
		return BootstrapResult{}, fmt.Errorf("bootstrap: %w", err)
	}

	users := s.Store.Users()
	existing, err := users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.createAdmin(ctx, email, seed)
	case err != nil:
		return BootstrapResult{}, fmt.Errorf("bootstrap: lookup admin: %w", err)
	}

	if existing.Role != domain.RoleAdmin {
		return BootstrapResult{User: existing}, ErrBootstrapNotAdmin
	}
	if existing.IsActive() {
		return BootstrapResult{User: existing}, nil
	}

	u, err := updateUser(ctx, users, existing.ID, func(u *domain.User) error {
		if u.IsActive() {
			return errUnchanged
		}
		u.Status = domain.StatusActive
		return nil
	})
	if err != nil {
		return BootstrapResult{}, fmt.Errorf("bootstrap: reactivate admin: %w", err)
	}

	l.Warn("admin account reactivated", slog.String("user_id", u.ID))
	return BootstrapResult{User: u, Reactivated: true}, nil
}

func (s *BootstrapService) createAdmin(ctx context.Context, email string, seed AdminSeed) (BootstrapResult, error) {
	res := BootstrapResult{Created: true}

	password := seed.Password
	if password == "" {
		generated, err := cryptox.GeneratePassword(generatedPasswordLength)
		if err != nil {
			return BootstrapResult{}, fmt.Errorf("bootstrap: generate password: %w", err)
		}
		password = generated
		res.GeneratedPassword = generated
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return BootstrapResult{}, fmt.Errorf("bootstrap: hash password: %w", err)
	}

	name := strings.TrimSpace(seed.FullName)
	if name == "" {
		name = defaultAdminName
	}

	now := nowFrom(s.Now)
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		FullName:     name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Status:       domain.StatusActive,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return BootstrapResult{}, fmt.Errorf("bootstrap: create admin: %w", err)
	}

	slogx.FromContext(ctx).Info("admin account created",
		slog.String("user_id", u.ID),
		slog.String("email", u.Email),
	)
	res.User = u
	return res, nil
}
