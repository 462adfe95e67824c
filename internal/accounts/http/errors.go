package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// serviceErrors maps service sentinels to their wire form. Order matters
// only in that the first match wins.
var serviceErrors = []struct {
	err error
	api *accountsdk.APIError
}{
	{service.ErrDuplicateEmail, accountsdk.ErrDuplicateEmail},
	{service.ErrInvalidCredentials, accountsdk.ErrInvalidCredentials},
	{service.ErrTokenInvalid, accountsdk.ErrTokenFailed},
	{service.ErrPrincipalNotFound, accountsdk.ErrPrincipalNotFound},
	{service.ErrAccountInactive, accountsdk.ErrAccountDeactivated},
	{service.ErrUserNotFound, accountsdk.ErrUserNotFound},
	{service.ErrCurrentPasswordIncorrect, accountsdk.ErrCurrentPasswordIncorrect},
	{service.ErrAlreadyActive, accountsdk.ErrAlreadyActive},
	{service.ErrAlreadyInactive, accountsdk.ErrAlreadyInactive},
	{service.ErrSelfDeactivation, accountsdk.ErrSelfDeactivation},
}

// apiError converts a service error to the response the client sees.
// Unknown errors become ErrServerError; the detail stays in the logs.
func apiError(err error) *accountsdk.APIError {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return accountsdk.NewAPIError(http.StatusBadRequest, verr.Message).WithFields(verr.Fields)
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return m.api
		}
	}
	return accountsdk.ErrServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apiError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
	}
	apiErr.WriteError(w)
}
