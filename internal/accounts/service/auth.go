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
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// EventRecorder counts authentication outcomes. metrics.Metrics satisfies it.
type EventRecorder interface {
	RecordAuthEvent(event, outcome string)
}

type SignupInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	User  domain.User
	Token string
}

type AuthService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Tokens *jwtx.HS256Codec
	Events EventRecorder
	Now    func() time.Time
}

// Signup creates an active account with the user role and signs it in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = normalizeEmail(in.Email)

	if err := in.validate(); err != nil {
		s.record("signup", "invalid")
		return AuthResult{}, err
	}

	users := s.Store.Users()
	if _, err := users.GetUserByEmail(ctx, in.Email); err == nil {
		s.record("signup", "duplicate")
		return AuthResult{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.CreateUser(ctx, u); err != nil {
		// Lost a race with a concurrent signup for the same address.
		if errors.Is(err, store.ErrAlreadyExists) {
			s.record("signup", "duplicate")
			return AuthResult{}, ErrDuplicateEmail
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	token, _, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	slogx.FromContext(ctx).Info("user signed up", slog.String("user_id", u.ID))
	s.record("signup", "success")
	return AuthResult{User: u, Token: token}, nil
}

// Login exchanges an email and password for a token. Account status is not
// checked here; the request pipeline rejects inactive accounts on use.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := in.validate(); err != nil {
		s.record("login", "invalid")
		return AuthResult{}, err
	}

	users := s.Store.Users()
	u, err := users.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		// Same cost as a wrong password so timing does not reveal the email.
		s.Hasher.VerifyDummy(in.Password)
		s.record("login", "failure")
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("lookup email: %w", err)
	}

	if !s.Hasher.Verify(in.Password, u.PasswordHash) {
		s.record("login", "failure")
		return AuthResult{}, ErrInvalidCredentials
	}

	if s.Hasher.NeedsRehash(u.PasswordHash) {
		u = s.rehash(ctx, u, in.Password)
	}

	token, _, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.record("login", "success")
	return AuthResult{User: u, Token: token}, nil
}

// rehash upgrades a legacy hash after a successful login. Failure only
// costs the upgrade, so it is logged and the login proceeds.
func (s *AuthService) rehash(ctx context.Context, u domain.User, password string) domain.User {
	l := slogx.FromContext(ctx)

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		l.Warn("password rehash failed", slog.String("user_id", u.ID), slog.Any("error", err))
		return u
	}

	next := u
	next.PasswordHash = hash
	saved, err := s.Store.Users().SaveUser(ctx, next)
	if err != nil {
		l.Warn("password rehash not saved", slog.String("user_id", u.ID), slog.Any("error", err))
		return u
	}

	l.Info("password hash upgraded", slog.String("user_id", u.ID))
	return saved
}

// Authenticate runs the token, principal and status gates for a bearer
// token taken from a request.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	subject, ok := s.Tokens.Subject(token)
	if !ok {
		s.record("authenticate", "token_invalid")
		return domain.Principal{}, ErrTokenInvalid
	}

	u, err := s.Store.Users().GetUserByID(ctx, subject)
	if errors.Is(err, store.ErrNotFound) {
		s.record("authenticate", "principal_not_found")
		return domain.Principal{}, ErrPrincipalNotFound
	}
	if err != nil {
		return domain.Principal{}, fmt.Errorf("load principal: %w", err)
	}

	if !u.IsActive() {
		s.record("authenticate", "inactive")
		return domain.Principal{}, ErrAccountInactive
	}

	return u.Principal(), nil
}

// Me returns the authenticated caller.
func (s *AuthService) Me(p domain.Principal) domain.Principal { return p }

// Logout acknowledges a sign-out. Tokens are stateless; the client drops it.
func (s *AuthService) Logout(ctx context.Context, p domain.Principal) {
	slogx.FromContext(ctx).Info("user logged out", slog.String("user_id", p.ID))
	s.record("logout", "success")
}

func (s *AuthService) record(event, outcome string) {
	if s.Events != nil {
		s.Events.RecordAuthEvent(event, outcome)
	}
}

func (s *AuthService) now() time.Time {
	return nowFrom(s.Now)
}

func nowFrom(fn func() time.Time) time.Time {
	if fn == nil {
		fn = time.Now
	}
	return fn().UTC().Truncate(time.Millisecond)
}
