package accountsdk

import "sync"

// Session is an authenticated session. Tokens are not refreshed; once the
// token expires every call fails with ErrTokenFailed and the caller must
// log in again.
type Session struct {
	client *Client

	mu    sync.RWMutex
	token string
	user  User
}

func newSession(client *Client, resp *AuthResponse) *Session {
	return &Session{
		client: client,
		token:  resp.Token,
		user:   resp.User,
	}
}

// Token returns the bearer token, or "" after Logout.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the account as it was when the session was created. Use Me
// for a fresh copy.
func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) currentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
