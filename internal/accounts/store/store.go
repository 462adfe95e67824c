package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict means the record changed since it was read; reload and
	// retry the read-modify-write.
	ErrConflict = errors.New("store: version conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite, mongo,
// postgres) implement this and expose sub-repositories so callers only see
// the operations they need.
type Store interface {
	Users() Users

	// ApplyMigrations brings the schema (tables or indexes) up to date.
	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Users is the account repository. Emails are compared exactly; callers
// normalize before every lookup and write.
type Users interface {
	// CreateUser inserts u, which must carry its id, hash and timestamps.
	// Returns ErrAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByEmailExcluding finds a user with email other than excludeID.
	// Profile updates use it to check the new email is free.
	GetUserByEmailExcluding(ctx context.Context, email, excludeID string) (domain.User, error)

	// SaveUser persists full name, email, password hash and status if the
	// stored version still equals u.Version, returning the saved record
	// with its version bumped and UpdatedAt set.
	//
	// Errors: ErrNotFound, ErrConflict on a stale version, ErrAlreadyExists
	// if the new email collides.
	SaveUser(ctx context.Context, u domain.User) (domain.User, error)

	CountUsers(ctx context.Context) (int64, error)

	// ListUsers returns up to limit users after skipping skip, newest first
	// (created_at desc, id desc).
	ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error)
}
