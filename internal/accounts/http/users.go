package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

type UsersHandler struct {
	AccountService *service.AccountService
}

// HandleGetProfile returns the caller's account as currently stored.
//
//	@Summary		Get profile
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accountsdk.UserResponse
//	@Failure		401	{object}	accountsdk.ErrorResponse
//	@Failure		403	{object}	accountsdk.ErrorResponse
//	@Failure		404	{object}	accountsdk.ErrorResponse
//	@Router			/api/users/profile [get].
func (h *UsersHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	u, err := h.AccountService.GetProfile(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.UserResponse{
		Success: true,
		User:    toUser(u),
	})
}

// HandleUpdateProfile changes the caller's name and/or email. Absent or
// empty fields are left unchanged.
//
//	@Summary		Update profile
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.UpdateProfileRequest	true	"Fields to change"
//	@Success		200		{object}	accountsdk.UserResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Invalid email or email already in use"
//	@Failure		401		{object}	accountsdk.ErrorResponse
//	@Failure		403		{object}	accountsdk.ErrorResponse
//	@Failure		404		{object}	accountsdk.ErrorResponse
//	@Router			/api/users/profile [put].
func (h *UsersHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	var req accountsdk.UpdateProfileRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		accountsdk.ErrBadRequest.WriteError(w)
		return
	}

	u, err := h.AccountService.UpdateProfile(r.Context(), p, service.ProfileUpdate{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.UserResponse{
		Success: true,
		Message: "Profile updated successfully",
		User:    toUser(u),
	})
}

// HandleChangePassword replaces the caller's password.
//
//	@Summary		Change password
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	accountsdk.MessageResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Missing or invalid fields"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"Current password is incorrect"
//	@Failure		403		{object}	accountsdk.ErrorResponse
//	@Router			/api/users/change-password [put].
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	var req accountsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		accountsdk.ErrBadRequest.WriteError(w)
		return
	}

	err := h.AccountService.ChangePassword(r.Context(), p, service.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{
		Success: true,
		Message: "Password changed successfully",
	})
}

// HandleList returns one page of accounts, newest first.
//
//	@Summary		List users
//	@Description	Admin only. page defaults to 1 and limit to 10; limit is capped at 100.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page	query		int	false	"Page number, from 1"
//	@Param			limit	query		int	false	"Page size"
//	@Success		200		{object}	accountsdk.UserListResponse
//	@Failure		401		{object}	accountsdk.ErrorResponse
//	@Failure		403		{object}	accountsdk.ErrorResponse	"Not an admin or deactivated"
//	@Router			/api/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	// Absent or non-numeric values fall back to the defaults.
	page, _ := httpx.QueryInt(r, "page")
	limit, _ := httpx.QueryInt(r, "limit")

	res, err := h.AccountService.ListUsers(r.Context(), service.PageQuery{Page: page, Limit: limit})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.UserListResponse{
		Success: true,
		Count:   res.Count,
		Total:   res.Total,
		Page:    res.Page,
		Pages:   res.Pages,
		Users:   toUsers(res.Users),
	})
}

// HandleActivate re-enables an account.
//
//	@Summary		Activate user
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	accountsdk.UserResponse
//	@Failure		400	{object}	accountsdk.ErrorResponse	"Already active"
//	@Failure		401	{object}	accountsdk.ErrorResponse
//	@Failure		403	{object}	accountsdk.ErrorResponse
//	@Failure		404	{object}	accountsdk.ErrorResponse
//	@Router			/api/users/{id}/activate [patch].
func (h *UsersHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	u, err := h.AccountService.ActivateUser(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.UserResponse{
		Success: true,
		Message: "User activated successfully",
		User:    toUser(u),
	})
}

// HandleDeactivate disables an account. Admins cannot deactivate
// themselves.
//
//	@Summary		Deactivate user
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	accountsdk.UserResponse
//	@Failure		400	{object}	accountsdk.ErrorResponse	"Already inactive or own account"
//	@Failure		401	{object}	accountsdk.ErrorResponse
//	@Failure		403	{object}	accountsdk.ErrorResponse
//	@Failure		404	{object}	accountsdk.ErrorResponse
//	@Router			/api/users/{id}/deactivate [patch].
func (h *UsersHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	u, err := h.AccountService.DeactivateUser(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.UserResponse{
		Success: true,
		Message: "User deactivated successfully",
		User:    toUser(u),
	})
}
