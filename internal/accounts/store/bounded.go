package store

import (
	"context"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
)

// DefaultTimeout bounds a single store call.
const DefaultTimeout = 5 * time.Second

// Observer receives the duration and outcome of every bounded store call.
type Observer interface {
	ObserveStoreOp(op string, d time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveStoreOp(string, time.Duration, error) {}

// Bounded wraps st so each repository call runs under its own deadline of
// timeout and is reported to obs. A deadline hit surfaces as the driver's
// context error, which callers treat as a store failure.
func Bounded(st Store, timeout time.Duration, obs Observer) Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &boundedStore{Store: st, timeout: timeout, obs: obs}
}

type boundedStore struct {
	Store
	timeout time.Duration
	obs     Observer
}

func (b *boundedStore) Users() Users {
	return &boundedUsers{next: b.Store.Users(), b: b}
}

func (b *boundedStore) Ping(ctx context.Context) error {
	return run(ctx, b, "ping", func(ctx context.Context) error { return b.Store.Ping(ctx) })
}

// run executes fn under the store deadline and records it.
func run(ctx context.Context, b *boundedStore, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	b.obs.ObserveStoreOp(op, time.Since(start), err)
	return err
}

type boundedUsers struct {
	next Users
	b    *boundedStore
}

func (u *boundedUsers) CreateUser(ctx context.Context, usr domain.User) error {
	return run(ctx, u.b, "create_user", func(ctx context.Context) error {
		return u.next.CreateUser(ctx, usr)
	})
}

func (u *boundedUsers) GetUserByID(ctx context.Context, id string) (out domain.User, err error) {
	err = run(ctx, u.b, "get_user_by_id", func(ctx context.Context) error {
		out, err = u.next.GetUserByID(ctx, id)
		return err
	})
	return out, err
}

func (u *boundedUsers) GetUserByEmail(ctx context.Context, email string) (out domain.User, err error) {
	err = run(ctx, u.b, "get_user_by_email", func(ctx context.Context) error {
		out, err = u.next.GetUserByEmail(ctx, email)
		return err
	})
	return out, err
}

func (u *boundedUsers) GetUserByEmailExcluding(ctx context.Context, email, excludeID string) (out domain.User, err error) {
	err = run(ctx, u.b, "get_user_by_email_excluding", func(ctx context.Context) error {
		out, err = u.next.GetUserByEmailExcluding(ctx, email, excludeID)
		return err
	})
	return out, err
}

func (u *boundedUsers) SaveUser(ctx context.Context, usr domain.User) (out domain.User, err error) {
	err = run(ctx, u.b, "save_user", func(ctx context.Context) error {
		out, err = u.next.SaveUser(ctx, usr)
		return err
	})
	return out, err
}

func (u *boundedUsers) CountUsers(ctx context.Context) (n int64, err error) {
	err = run(ctx, u.b, "count_users", func(ctx context.Context) error {
		n, err = u.next.CountUsers(ctx)
		return err
	})
	return n, err
}

func (u *boundedUsers) ListUsers(ctx context.Context, skip, limit int) (out []domain.User, err error) {
	err = run(ctx, u.b, "list_users", func(ctx context.Context) error {
		out, err = u.next.ListUsers(ctx, skip, limit)
		return err
	})
	return out, err
}
