package http

import (
	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
)

func toUser(u domain.User) accountsdk.User {
	return fromPrincipal(u.Principal())
}

func fromPrincipal(p domain.Principal) accountsdk.User {
	return accountsdk.User{
		ID:        p.ID,
		LegacyID:  p.ID,
		FullName:  p.FullName,
		Email:     p.Email,
		Role:      string(p.Role),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toUsers(us []domain.User) []accountsdk.User {
	out := make([]accountsdk.User, 0, len(us))
	for _, u := range us {
		out = append(out, toUser(u))
	}
	return out
}
