package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleSignup registers a new account.
//
//	@Summary		Sign up
//	@Description	Creates an active account with the user role and returns it with a bearer token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.SignupRequest	true	"Full name, email and password"
//	@Success		201		{object}	accountsdk.AuthResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Missing or invalid fields, or email already in use"
//	@Failure		500		{object}	accountsdk.ErrorResponse
//	@Router			/api/auth/signup [post].
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.SignupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		accountsdk.ErrBadRequest.WriteError(w)
		return
	}

	res, err := h.AuthService.Signup(r.Context(), service.SignupInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, accountsdk.AuthResponse{
		Success: true,
		Message: "User registered successfully",
		User:    toUser(res.User),
		Token:   res.Token,
	})
}

// HandleLogin exchanges credentials for a bearer token.
//
//	@Summary		Log in
//	@Description	Verifies email and password and returns the account with a bearer token.
//	@Description	Unknown email and wrong password produce the same response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.LoginRequest	true	"Email and password"
//	@Success		200		{object}	accountsdk.AuthResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Missing fields"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"Invalid email or password"
//	@Failure		500		{object}	accountsdk.ErrorResponse
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		accountsdk.ErrBadRequest.WriteError(w)
		return
	}

	res, err := h.AuthService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    toUser(res.User),
		Token:   res.Token,
	})
}

// HandleMe returns the authenticated account.
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accountsdk.UserResponse
//	@Failure		401	{object}	accountsdk.ErrorResponse	"Missing or invalid token, or account gone"
//	@Failure		403	{object}	accountsdk.ErrorResponse	"Account deactivated"
//	@Router			/api/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.UserResponse{
		Success: true,
		User:    fromPrincipal(h.AuthService.Me(p)),
	})
}

// HandleLogout acknowledges a logout. Tokens are stateless; the client
// discards its copy.
//
//	@Summary		Log out
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accountsdk.MessageResponse
//	@Failure		401	{object}	accountsdk.ErrorResponse
//	@Failure		403	{object}	accountsdk.ErrorResponse
//	@Router			/api/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	h.AuthService.Logout(r.Context(), p)
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}
