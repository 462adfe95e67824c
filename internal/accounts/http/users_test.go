package http_test

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestProfile(t *testing.T) {
	srv := newTestServer(t)
	ctx := t.Context()

	sess := srv.signup(t, "Alan Turing", "alan@example.com")
	srv.signup(t, "Taken", "taken@example.com")

	got, err := sess.GetProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, "Alan Turing", got.FullName)

	t.Run("update name only", func(t *testing.T) {
		u, err := sess.UpdateProfile(ctx, accountsdk.UpdateProfileRequest{FullName: ptr("A. M. Turing")})
		require.NoError(t, err)
		require.Equal(t, "A. M. Turing", u.FullName)
		require.Equal(t, "alan@example.com", u.Email)
	})

	t.Run("empty values are ignored", func(t *testing.T) {
		u, err := sess.UpdateProfile(ctx, accountsdk.UpdateProfileRequest{FullName: ptr(""), Email: ptr("")})
		require.NoError(t, err)
		require.Equal(t, "A. M. Turing", u.FullName)
		require.Equal(t, "alan@example.com", u.Email)
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := sess.UpdateProfile(ctx, accountsdk.UpdateProfileRequest{Email: ptr("Taken@example.com")})
		requireAPIError(t, err, accountsdk.ErrDuplicateEmail)
	})

	t.Run("malformed email", func(t *testing.T) {
		_, err := sess.UpdateProfile(ctx, accountsdk.UpdateProfileRequest{Email: ptr("not-an-email")})
		require.Equal(t, http.StatusBadRequest, accountsdk.StatusCode(err))
	})

	t.Run("new email logs in", func(t *testing.T) {
		_, err := sess.UpdateProfile(ctx, accountsdk.UpdateProfileRequest{Email: ptr("turing@example.com")})
		require.NoError(t, err)
		require.Equal(t, "turing@example.com", sess.User().Email)

		_, err = srv.Client.Login(ctx, "turing@example.com", "password123")
		require.NoError(t, err)
	})
}

func TestChangePassword(t *testing.T) {
	srv := newTestServer(t)
	ctx := t.Context()

	sess := srv.signup(t, "Edsger Dijkstra", "edsger@example.com")

	err := sess.ChangePassword(ctx, "", "new-password")
	requireAPIError(t, err, accountsdk.NewAPIError(http.StatusBadRequest, "Please provide current and new password"))

	err = sess.ChangePassword(ctx, "wrong-password", "new-password")
	requireAPIError(t, err, accountsdk.ErrCurrentPasswordIncorrect)

	err = sess.ChangePassword(ctx, "password123", "123")
	require.Equal(t, http.StatusBadRequest, accountsdk.StatusCode(err))

	require.NoError(t, sess.ChangePassword(ctx, "password123", "new-password"))

	_, err = srv.Client.Login(ctx, "edsger@example.com", "password123")
	requireAPIError(t, err, accountsdk.ErrInvalidCredentials)

	_, err = srv.Client.Login(ctx, "edsger@example.com", "new-password")
	require.NoError(t, err)

	// The token issued before the change stays valid.
	_, err = sess.Me(ctx)
	require.NoError(t, err)
}

func TestAdminRequired(t *testing.T) {
	srv := newTestServer(t)
	ctx := t.Context()

	user := srv.signup(t, "Plain User", "plain@example.com")

	_, err := user.ListUsers(ctx, 0, 0)
	requireAPIError(t, err, accountsdk.ErrNotAdmin)

	_, err = user.DeactivateUser(ctx, user.User().ID)
	requireAPIError(t, err, accountsdk.ErrNotAdmin)

	_, err = srv.Client.NewSession("").ListUsers(ctx, 0, 0)
	requireAPIError(t, err, accountsdk.ErrNoToken)
}

func TestListUsers(t *testing.T) {
	srv := newTestServer(t)
	ctx := t.Context()
	admin := srv.admin(t)

	for i := range 14 {
		srv.signup(t, fmt.Sprintf("User %d", i), fmt.Sprintf("user%02d@example.com", i))
	}

	// 14 users plus the admin.
	page, err := admin.ListUsers(ctx, 0, 0)
	require.NoError(t, err)
	require.True(t, page.Success)
	require.EqualValues(t, 15, page.Total)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 2, page.Pages)
	require.Equal(t, 10, page.Count)
	require.Len(t, page.Users, 10)
	require.Equal(t, "user13@example.com", page.Users[0].Email, "newest first")

	second, err := admin.ListUsers(ctx, 2, 10)
	require.NoError(t, err)
	require.Equal(t, 5, second.Count)
	require.Equal(t, adminEmail, second.Users[4].Email)

	t.Run("lenient query values", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/users?page=abc&limit=-5", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+admin.Token())

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), `"page":1`)
		require.Contains(t, string(body), `"count":10`)
	})

	t.Run("no password hashes on the wire", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/users?limit=100", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+admin.Token())

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.False(t, strings.Contains(string(body), "argon2"), "response leaks a hash")
		require.False(t, strings.Contains(strings.ToLower(string(body)), "password"))
	})
}

func TestActivateDeactivate(t *testing.T) {
	srv := newTestServer(t)
	ctx := t.Context()
	admin := srv.admin(t)

	target := srv.signup(t, "Target", "target@example.com")
	id := target.User().ID

	_, err := admin.ActivateUser(ctx, id)
	requireAPIError(t, err, accountsdk.ErrAlreadyActive)

	u, err := admin.DeactivateUser(ctx, id)
	require.NoError(t, err)
	require.Equal(t, accountsdk.StatusInactive, u.Status)

	_, err = admin.DeactivateUser(ctx, id)
	requireAPIError(t, err, accountsdk.ErrAlreadyInactive)

	u, err = admin.ActivateUser(ctx, id)
	require.NoError(t, err)
	require.Equal(t, accountsdk.StatusActive, u.Status)

	_, err = target.Me(ctx)
	require.NoError(t, err)

	_, err = admin.DeactivateUser(ctx, admin.User().ID)
	requireAPIError(t, err, accountsdk.ErrSelfDeactivation)

	_, err = admin.ActivateUser(ctx, "01J00000000000000000000000")
	requireAPIError(t, err, accountsdk.ErrUserNotFound)
}
