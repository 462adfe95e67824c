package accountsdk

import (
	"context"
	"net/http"
)

// ============================================================================
// Current user
// ============================================================================

// Me returns the authenticated account.
func (s *Session) Me(ctx context.Context) (*User, error) {
	return s.getUser(ctx, "/api/auth/me")
}

// Logout acknowledges a logout with the server and forgets the token. The
// token itself stays valid until it expires.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.client.doJSON(ctx, http.MethodPost, "/api/auth/logout", s.currentToken(), nil)
	if err != nil {
		return err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// ============================================================================
// Profile
// ============================================================================

// GetProfile re-reads the authenticated account from the store.
func (s *Session) GetProfile(ctx context.Context) (*User, error) {
	return s.getUser(ctx, "/api/users/profile")
}

// UpdateProfile changes the caller's name and/or email.
func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	resp, err := s.client.doJSON(ctx, http.MethodPut, "/api/users/profile", s.currentToken(), req)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = out.User
	s.mu.Unlock()

	return &out.User, nil
}

// ChangePassword replaces the caller's password. The current token stays
// valid.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	resp, err := s.client.doJSON(ctx, http.MethodPut, "/api/users/change-password", s.currentToken(), ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

func (s *Session) getUser(ctx context.Context, path string) (*User, error) {
	resp, err := s.client.doJSON(ctx, http.MethodGet, path, s.currentToken(), nil)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.User, nil
}
