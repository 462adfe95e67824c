package httpx

import (
	"net/http"
	"strings"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme match is case-insensitive; ok is false when the header
// is absent, uses another scheme, or carries an empty token.
func BearerToken(r *http.Request) (token string, ok bool) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, rest, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(rest)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
