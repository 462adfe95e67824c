package http_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	accountshttp "github.com/aussiebroadwan/accounts/internal/accounts/http"
	"github.com/aussiebroadwan/accounts/internal/accounts/metrics"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "test-secret-that-is-at-least-32-bytes-long"
	testVersion   = "test"
	adminEmail    = "admin@example.com"
	adminPassword = "admin-password"
)

var fastParams = cryptox.Params{
	Memory:      64,
	Iterations:  1,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

type testServer struct {
	URL     string
	Client  *accountsdk.Client
	Store   store.Store
	Tokens  *jwtx.HS256Codec
	Metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	tokens, err := jwtx.NewHS256Codec(testSecret, jwtx.HS256Options{
		Issuer: "accounts-test",
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	m := metrics.New()
	hasher := cryptox.NewHasherWithParams("pepper", fastParams)
	bounded := store.Bounded(st, 5*time.Second, m)

	_, err = (&service.BootstrapService{Store: bounded, Hasher: hasher}).EnsureAdmin(context.Background(), service.AdminSeed{
		Email:    adminEmail,
		Password: adminPassword,
	})
	require.NoError(t, err)

	router := accountshttp.NewRouter(testVersion, bounded, slogx.Discard())
	router.AuthService = &service.AuthService{
		Store:  bounded,
		Hasher: hasher,
		Tokens: tokens,
		Events: m,
	}
	router.AccountService = &service.AccountService{Store: bounded, Hasher: hasher}
	router.Metrics = m
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:     srv.URL,
		Client:  accountsdk.NewClient(srv.URL),
		Store:   st,
		Tokens:  tokens,
		Metrics: m,
	}
}

func (s *testServer) signup(t *testing.T, name, email string) *accountsdk.Session {
	t.Helper()
	sess, err := s.Client.Signup(t.Context(), accountsdk.SignupRequest{
		FullName: name,
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return sess
}

func (s *testServer) admin(t *testing.T) *accountsdk.Session {
	t.Helper()
	sess, err := s.Client.Login(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err)
	return sess
}

// requireAPIError asserts err is an *APIError with the given status and
// message.
func requireAPIError(t *testing.T, err error, want *accountsdk.APIError) {
	t.Helper()
	require.Error(t, err)

	var apiErr *accountsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, want.StatusCode, apiErr.StatusCode, apiErr.Message)
	require.Equal(t, want.Message, apiErr.Message)
}
