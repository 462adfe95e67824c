package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// RequireAuth admits requests carrying a valid bearer token for an existing,
// active account and attaches that account to the request context. Checks
// run in order: token present, token verifies, account exists, account
// active.
func RequireAuth(auth *service.AuthService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := httpx.BearerToken(r)
			if !ok {
				accountsdk.ErrNoToken.WriteError(w)
				return
			}

			p, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := withPrincipal(r.Context(), p)
			ctx = slogx.WithUser(ctx, p.ID, string(p.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin admits only admins. It must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFrom(r.Context())
		if !ok || !p.IsAdmin() {
			accountsdk.ErrNotAdmin.WriteError(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// mustPrincipal returns the authenticated caller. A missing principal means
// a route was registered without RequireAuth.
func mustPrincipal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := principalFrom(r.Context())
	if !ok {
		slogx.FromContext(r.Context()).Error("handler reached without principal", "path", r.URL.Path)
		accountsdk.ErrServerError.WriteError(w)
	}
	return p, ok
}
