// Package storetest holds the behaviour every store driver must share. Driver
// tests call RunUsers with a freshly migrated, empty store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/stretchr/testify/require"
)

// NewUser returns a valid user created at the given time.
func NewUser(email string, createdAt time.Time) domain.User {
	createdAt = createdAt.UTC().Truncate(time.Millisecond)
	return domain.User{
		ID:           idx.NewAt(createdAt).String(),
		FullName:     "Test " + email,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		Version:      1,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// RunUsers exercises the Users repository of an empty store. newStore must
// return a store with no users; it is called once per subtest.
func RunUsers(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("create and get", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t).Users()

		u := NewUser("ada@example.com", time.Now())
		require.NoError(t, users.CreateUser(ctx, u))

		byID, err := users.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		requireSameUser(t, u, byID)

		byEmail, err := users.GetUserByEmail(ctx, u.Email)
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)
		require.Equal(t, u.PasswordHash, byEmail.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t).Users()

		_, err := users.GetUserByID(ctx, idx.New().String())
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = users.GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = users.SaveUser(ctx, NewUser("ghost@example.com", time.Now()))
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t).Users()

		require.NoError(t, users.CreateUser(ctx, NewUser("dup@example.com", time.Now())))
		err := users.CreateUser(ctx, NewUser("dup@example.com", time.Now()))
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		n, err := users.CountUsers(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})

	t.Run("email excluding", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t).Users()

		a := NewUser("a@example.com", time.Now())
		b := NewUser("b@example.com", time.Now())
		require.NoError(t, users.CreateUser(ctx, a))
		require.NoError(t, users.CreateUser(ctx, b))

		_, err := users.GetUserByEmailExcluding(ctx, "a@example.com", a.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		got, err := users.GetUserByEmailExcluding(ctx, "a@example.com", b.ID)
		require.NoError(t, err)
		require.Equal(t, a.ID, got.ID)
	})

	t.Run("save bumps version", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t).Users()

		u := NewUser("save@example.com", time.Now().Add(-time.Hour))
		require.NoError(t, users.CreateUser(ctx, u))

		u.FullName = "Renamed"
		u.Email = "renamed@example.com"
		u.Status = domain.StatusInactive
		u.PasswordHash = "$argon2id$v=19$m=19456,t=2,p=1$bmV3$bmV3"

		saved, err := users.SaveUser(ctx, u)
		require.NoError(t, err)
		require.Equal(t, u.Version+1, saved.Version)
		require.True(t, saved.UpdatedAt.After(u.UpdatedAt))

		got, err := users.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "Renamed", got.FullName)
		require.Equal(t, "renamed@example.com", got.Email)
		require.Equal(t, domain.StatusInactive, got.Status)
		require.Equal(t, u.PasswordHash, got.PasswordHash)
		require.Equal(t, saved.Version, got.Version)
		require.Equal(t, domain.RoleUser, got.Role, "role is not writable through SaveUser")
	})

	t.Run("stale save conflicts", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t).Users()

		u := NewUser("race@example.com", time.Now())
		require.NoError(t, users.CreateUser(ctx, u))

		first := u
		first.Status = domain.StatusInactive
		_, err := users.SaveUser(ctx, first)
		require.NoError(t, err)

		second := u
		second.FullName = "Lost update"
		_, err = users.SaveUser(ctx, second)
		require.ErrorIs(t, err, store.ErrConflict)

		got, err := users.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.FullName, got.FullName)
		require.Equal(t, domain.StatusInactive, got.Status)
	})

	t.Run("save into taken email", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t).Users()

		a := NewUser("taken@example.com", time.Now())
		b := NewUser("mover@example.com", time.Now())
		require.NoError(t, users.CreateUser(ctx, a))
		require.NoError(t, users.CreateUser(ctx, b))

		b.Email = a.Email
		_, err := users.SaveUser(ctx, b)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("list newest first", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t).Users()

		base := time.Now().Add(-time.Hour)
		var ids []string
		for i := range 12 {
			u := NewUser(string(rune('a'+i))+"@example.com", base.Add(time.Duration(i)*time.Second))
			require.NoError(t, users.CreateUser(ctx, u))
			ids = append(ids, u.ID)
		}

		total, err := users.CountUsers(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 12, total)

		page, err := users.ListUsers(ctx, 0, 5)
		require.NoError(t, err)
		require.Len(t, page, 5)
		require.Equal(t, ids[11], page[0].ID)
		require.Equal(t, ids[7], page[4].ID)

		last, err := users.ListUsers(ctx, 10, 5)
		require.NoError(t, err)
		require.Len(t, last, 2)
		require.Equal(t, ids[0], last[1].ID)

		empty, err := users.ListUsers(ctx, 50, 5)
		require.NoError(t, err)
		require.Empty(t, empty)
	})
}

func requireSameUser(t *testing.T, want, got domain.User) {
	t.Helper()
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.FullName, got.FullName)
	require.Equal(t, want.Email, got.Email)
	require.Equal(t, want.PasswordHash, got.PasswordHash)
	require.Equal(t, want.Role, got.Role)
	require.Equal(t, want.Status, got.Status)
	require.Equal(t, want.Version, got.Version)
	require.WithinDuration(t, want.CreatedAt, got.CreatedAt, time.Millisecond)
}
