/*
Package accountsdk is a Go client for the accounts service.

# Overview

The package is organized around two types:

  - Client: unauthenticated operations (signup, login, health) and the
    entry point for creating a Session.
  - Session: operations that need a bearer token (profile, password,
    admin user management).

Sign up or log in to obtain a Session:

	client := accountsdk.NewClient("https://accounts.example.com")

	session, err := client.Login(ctx, "ada@example.com", "password123")
	if err != nil {
		return err
	}

	me, err := session.Me(ctx)

Admin operations use the same Session type; the server rejects them with
403 when the caller is not an admin:

	page, err := session.ListUsers(ctx, 1, 20)
	user, err := session.DeactivateUser(ctx, page.Users[0].ID)

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP
status and the server's message:

	var apiErr *accountsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		// log in again
	}

The same APIError values are used by the server to write its responses,
so the predefined errors (ErrNoToken, ErrNotAdmin, ...) match exactly what
a client receives.

# Tokens

Tokens are stateless JWTs with a fixed lifetime (seven days by default).
There is no refresh flow; when a token expires the caller logs in again.
Logout is an acknowledgement only: the client discards its token.

# Thread Safety

Client and Session are safe for concurrent use.
*/
package accountsdk
