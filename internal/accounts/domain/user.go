package domain

import "time"

// User is an account record as the store holds it.
type User struct {
	ID           string
	FullName     string
	Email        string // normalized: trimmed, lowercased
	PasswordHash string // argon2id PHC or legacy bcrypt; never leaves the service layer
	Role         Role
	Status       Status
	Version      int64 // bumped on every successful save
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the account may use authenticated endpoints.
func (u User) IsActive() bool { return u.Status == StatusActive }

// Principal is the caller attached to an authenticated request. It is built
// fresh from the store on each request and carries no credential material.
type Principal struct {
	ID        string
	FullName  string
	Email     string
	Role      Role
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) Principal() Principal {
	return Principal{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
