package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-that-is-at-least-32-bytes-long"
	testIssuer = "accounts-test"
)

// fastParams keeps argon2 cheap in tests.
var fastParams = cryptox.Params{
	Memory:      64,
	Iterations:  1,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) RecordAuthEvent(event, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event+":"+outcome)
}

type env struct {
	store     store.Store
	hasher    *cryptox.Hasher
	tokens    *jwtx.HS256Codec
	clock     *clock
	events    *recorder
	auth      *AuthService
	accounts  *AccountService
	bootstrap *BootstrapService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clk := &clock{now: time.Now().UTC()}
	tokens, err := jwtx.NewHS256Codec(testSecret, jwtx.HS256Options{
		Issuer: testIssuer,
		TTL:    time.Hour,
		Now:    clk.Now,
	})
	require.NoError(t, err)

	hasher := cryptox.NewHasherWithParams("pepper", fastParams)
	events := &recorder{}

	return &env{
		store:  st,
		hasher: hasher,
		tokens: tokens,
		clock:  clk,
		events: events,
		auth: &AuthService{
			Store:  st,
			Hasher: hasher,
			Tokens: tokens,
			Events: events,
			Now:    clk.Now,
		},
		accounts:  &AccountService{Store: st, Hasher: hasher},
		bootstrap: &BootstrapService{Store: st, Hasher: hasher, Now: clk.Now},
	}
}

// signup registers a user and returns it with its token.
func (e *env) signup(t *testing.T, name, email, password string) AuthResult {
	t.Helper()
	res, err := e.auth.Signup(context.Background(), SignupInput{
		FullName: name,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return res
}

// createAdmin inserts an active admin directly.
func (e *env) createAdmin(t *testing.T, email string) domain.Principal {
	t.Helper()
	res, err := e.bootstrap.EnsureAdmin(context.Background(), AdminSeed{
		Email:    email,
		Password: "admin-password",
	})
	require.NoError(t, err)
	return res.User.Principal()
}

func (e *env) setStatus(t *testing.T, id string, status domain.Status) {
	t.Helper()
	ctx := context.Background()
	u, err := e.store.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	u.Status = status
	_, err = e.store.Users().SaveUser(ctx, u)
	require.NoError(t, err)
}
