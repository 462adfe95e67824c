package app

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	cfg := defaultConfig()
	cfg.Env = "test"
	cfg.JWTSecret = "app-test-secret-that-is-at-least-32-bytes"
	cfg.DatabaseFile = filepath.Join(dir, "accounts.db")
	cfg.PepperFile = filepath.Join(dir, "pepper")
	return cfg
}

func TestNewServesRequests(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminEmail = "root@example.com"
	cfg.AdminPassword = "root-password"

	app, err := NewWithLogger(cfg, slogx.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	client := accountsdk.NewClient(srv.URL)

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)

	admin, err := client.Login(t.Context(), "root@example.com", "root-password")
	require.NoError(t, err)
	require.Equal(t, accountsdk.RoleAdmin, admin.User().Role)

	page, err := admin.ListUsers(t.Context(), 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
}

func TestGeneratedAdminPasswordIsLoggedOnce(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminEmail = "root@example.com"

	var logs bytes.Buffer
	logger := slogx.NewWithoutDefault(slogx.Config{Output: &logs, Format: "json"})

	first, err := NewWithLogger(cfg, logger)
	require.NoError(t, err)
	require.NoError(t, first.db.Close())
	require.Contains(t, logs.String(), "generated password")
	require.NotContains(t, logs.String(), `"generated_password":"`+slogx.Redacted+`"`)
	require.Regexp(t, `"generated_password":"[^"]{16,}"`, logs.String())

	logs.Reset()
	second, err := NewWithLogger(cfg, logger)
	require.NoError(t, err)
	require.NoError(t, second.db.Close())
	require.NotContains(t, logs.String(), "generated password")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTSecret = ""

	_, err := NewWithLogger(cfg, slogx.Discard())
	require.ErrorContains(t, err, "invalid configuration")
}

func TestDevGeneratesEphemeralSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "dev"
	cfg.JWTSecret = ""

	app, err := NewWithLogger(cfg, slogx.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })
	require.NotNil(t, app.tokens)
}
