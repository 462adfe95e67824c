package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without email", func(t *testing.T) {
		e := newEnv(t)
		res, err := e.bootstrap.EnsureAdmin(ctx, AdminSeed{})
		require.NoError(t, err)
		require.False(t, res.Created)

		n, err := e.store.Users().CountUsers(ctx)
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("creates admin with generated password", func(t *testing.T) {
		e := newEnv(t)
		res, err := e.bootstrap.EnsureAdmin(ctx, AdminSeed{Email: " Root@Example.com "})
		require.NoError(t, err)
		require.True(t, res.Created)
		require.Len(t, res.GeneratedPassword, generatedPasswordLength)
		require.Equal(t, domain.RoleAdmin, res.User.Role)
		require.Equal(t, "root@example.com", res.User.Email)
		require.Equal(t, defaultAdminName, res.User.FullName)

		login, err := e.auth.Login(ctx, LoginInput{Email: "root@example.com", Password: res.GeneratedPassword})
		require.NoError(t, err)
		require.True(t, login.User.Principal().IsAdmin())
	})

	t.Run("existing active admin is left alone", func(t *testing.T) {
		e := newEnv(t)
		first, err := e.bootstrap.EnsureAdmin(ctx, AdminSeed{Email: "root@example.com", Password: "admin-password"})
		require.NoError(t, err)

		again, err := e.bootstrap.EnsureAdmin(ctx, AdminSeed{Email: "root@example.com", Password: "other-password"})
		require.NoError(t, err)
		require.False(t, again.Created)
		require.False(t, again.Reactivated)
		require.Equal(t, first.User.ID, again.User.ID)
		require.Empty(t, again.GeneratedPassword)

		_, err = e.auth.Login(ctx, LoginInput{Email: "root@example.com", Password: "admin-password"})
		require.NoError(t, err)
	})

	t.Run("reactivates inactive admin", func(t *testing.T) {
		e := newEnv(t)
		admin := e.createAdmin(t, "root@example.com")
		e.setStatus(t, admin.ID, domain.StatusInactive)

		res, err := e.bootstrap.EnsureAdmin(ctx, AdminSeed{Email: "root@example.com"})
		require.NoError(t, err)
		require.True(t, res.Reactivated)
		require.Equal(t, domain.StatusActive, res.User.Status)
	})

	t.Run("refuses to promote an ordinary account", func(t *testing.T) {
		e := newEnv(t)
		e.signup(t, "Ada", "ada@example.com", "password123")

		_, err := e.bootstrap.EnsureAdmin(ctx, AdminSeed{Email: "ada@example.com"})
		require.ErrorIs(t, err, ErrBootstrapNotAdmin)

		u, err := e.store.Users().GetUserByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.Equal(t, domain.RoleUser, u.Role)
	})
}

func TestValidationErrorMessage(t *testing.T) {
	ve := &ValidationError{
		Message: "Invalid signup details",
		Fields:  map[string]string{"password": "too short", "email": "bad"},
	}
	require.Equal(t, "Invalid signup details (email: bad; password: too short)", ve.Error())
	require.ErrorIs(t, ve, ErrValidation)
	require.Equal(t, "x", invalid("x").Error())
}
