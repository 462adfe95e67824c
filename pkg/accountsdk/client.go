package accountsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Client is a client for the accounts service. It covers unauthenticated
// operations and creates authenticated Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSession wraps an existing token, for example one kept by a browser.
func (c *Client) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}

// Signup registers a new account and returns a session for it.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", "", req)
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return newSession(c, &out), nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return newSession(c, &out), nil
}
