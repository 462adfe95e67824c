package accountsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Admin operations. The server answers 403 ErrNotAdmin for non-admin
// sessions.

// ListUsers returns one page of accounts, newest first. Zero page or limit
// use the server defaults.
func (s *Session) ListUsers(ctx context.Context, page, limit int) (*UserListResponse, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := s.client.doJSON(ctx, http.MethodGet, path, s.currentToken(), nil)
	if err != nil {
		return nil, err
	}

	var out UserListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// ActivateUser sets an account's status to active.
func (s *Session) ActivateUser(ctx context.Context, id string) (*User, error) {
	return s.setStatus(ctx, id, "activate")
}

// DeactivateUser sets an account's status to inactive. Admins cannot
// deactivate themselves.
func (s *Session) DeactivateUser(ctx context.Context, id string) (*User, error) {
	return s.setStatus(ctx, id, "deactivate")
}

func (s *Session) setStatus(ctx context.Context, id, action string) (*User, error) {
	path := fmt.Sprintf("/api/users/%s/%s", url.PathEscape(id), action)

	resp, err := s.client.doJSON(ctx, http.MethodPatch, path, s.currentToken(), nil)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.User, nil
}
